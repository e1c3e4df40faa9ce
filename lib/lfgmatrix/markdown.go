// Copyright 2026 The PartyCrusher Authors
// SPDX-License-Identifier: Apache-2.0

package lfgmatrix

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/yuin/goldmark"
	gast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// The converter is built once. Its configuration never changes and
// Convert keeps per-call state in the parser context.
var (
	markdownInstance goldmark.Markdown
	markdownOnce     sync.Once
)

func getMarkdown() goldmark.Markdown {
	markdownOnce.Do(func() {
		markdownInstance = goldmark.New(
			goldmark.WithExtensions(
				extension.Strikethrough,
				spoilerExtension{},
			),
			goldmark.WithRendererOptions(
				html.WithHardWraps(),
			),
		)
	})
	return markdownInstance
}

// FormatHTML converts a message body to the HTML sent as
// formatted_body. Raw HTML in the source is omitted.
func FormatHTML(markdown string) (string, error) {
	var buffer bytes.Buffer
	if err := getMarkdown().Convert([]byte(markdown), &buffer); err != nil {
		return "", fmt.Errorf("lfgmatrix: rendering markdown: %w", err)
	}
	return string(bytes.TrimRight(buffer.Bytes(), "\n")), nil
}

// Spoiler is hidden text written as ||text||. It renders as a Matrix
// spoiler span.
type Spoiler struct {
	gast.BaseInline
}

// KindSpoiler is the NodeKind of Spoiler.
var KindSpoiler = gast.NewNodeKind("Spoiler")

// Kind implements ast.Node.
func (n *Spoiler) Kind() gast.NodeKind { return KindSpoiler }

// Dump implements ast.Node.
func (n *Spoiler) Dump(source []byte, level int) {
	gast.DumpHelper(n, source, level, nil, nil)
}

type spoilerDelimiterProcessor struct{}

func (spoilerDelimiterProcessor) IsDelimiter(b byte) bool { return b == '|' }

func (spoilerDelimiterProcessor) CanOpenCloser(opener, closer *parser.Delimiter) bool {
	return opener.Char == closer.Char
}

func (spoilerDelimiterProcessor) OnMatch(consumes int) gast.Node { return &Spoiler{} }

type spoilerParser struct{}

func (spoilerParser) Trigger() []byte { return []byte{'|'} }

// Parse accepts exactly two pipes; a single pipe stays literal text.
func (spoilerParser) Parse(parent gast.Node, block text.Reader, pc parser.Context) gast.Node {
	before := block.PrecendingCharacter()
	line, segment := block.PeekLine()
	node := parser.ScanDelimiter(line, before, 2, spoilerDelimiterProcessor{})
	if node == nil || node.OriginalLength != 2 || before == '|' {
		return nil
	}
	node.Segment = segment.WithStop(segment.Start + node.OriginalLength)
	block.Advance(node.OriginalLength)
	pc.PushDelimiter(node)
	return node
}

func (spoilerParser) CloseBlock(parent gast.Node, pc parser.Context) {}

type spoilerRenderer struct{}

func (spoilerRenderer) RegisterFuncs(registerer renderer.NodeRendererFuncRegisterer) {
	registerer.Register(KindSpoiler, renderSpoiler)
}

func renderSpoiler(writer util.BufWriter, source []byte, node gast.Node, entering bool) (gast.WalkStatus, error) {
	if entering {
		_, _ = writer.WriteString("<span data-mx-spoiler>")
	} else {
		_, _ = writer.WriteString("</span>")
	}
	return gast.WalkContinue, nil
}

type spoilerExtension struct{}

func (spoilerExtension) Extend(markdown goldmark.Markdown) {
	markdown.Parser().AddOptions(parser.WithInlineParsers(
		util.Prioritized(spoilerParser{}, 500),
	))
	markdown.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(spoilerRenderer{}, 500),
	))
}
