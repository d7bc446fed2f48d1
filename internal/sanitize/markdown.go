package sanitize

import (
	"regexp"
	"strings"
)

// BlockKind classifies one rendered line.
type BlockKind string

const (
	BlockParagraph BlockKind = "paragraph"
	BlockBullet    BlockKind = "bullet"
	BlockHeading   BlockKind = "heading"
	BlockSpacer    BlockKind = "spacer"
)

// Span is an inline run of text, bold or not.
type Span struct {
	Text string `json:"text"`
	Bold bool   `json:"bold,omitempty"`
}

// Block is one line of markdown-lite output.
type Block struct {
	Kind  BlockKind `json:"kind"`
	Spans []Span    `json:"spans,omitempty"`
}

// headingMarkers mark the section lines of a verification report.
var headingMarkers = []string{"Xác thực công ty", "Đánh giá cộng đồng", "Kết luận"}

var boldRun = regexp.MustCompile(`\*\*(.*?)\*\*`)

// ParseMarkdownLite turns narrative text into blocks, keeping **bold** runs as
// bold spans and "* " / "- " lines as bullets. Citation markers are stripped.
func ParseMarkdownLite(s string) []Block {
	s = StripCitations(s)
	if strings.TrimSpace(s) == "" {
		return nil
	}
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	blocks := make([]Block, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			if n := len(blocks); n > 0 && blocks[n-1].Kind != BlockSpacer {
				blocks = append(blocks, Block{Kind: BlockSpacer})
			}
		case strings.HasPrefix(trimmed, "* ") || strings.HasPrefix(trimmed, "- "):
			blocks = append(blocks, Block{Kind: BlockBullet, Spans: parseSpans(trimmed[2:])})
		case isHeading(trimmed):
			blocks = append(blocks, Block{Kind: BlockHeading, Spans: parseSpans(strings.TrimLeft(trimmed, "# "))})
		default:
			blocks = append(blocks, Block{Kind: BlockParagraph, Spans: parseSpans(trimmed)})
		}
	}
	for len(blocks) > 0 && blocks[len(blocks)-1].Kind == BlockSpacer {
		blocks = blocks[:len(blocks)-1]
	}
	return blocks
}

func isHeading(line string) bool {
	if strings.HasPrefix(line, "#") {
		return true
	}
	for _, m := range headingMarkers {
		if strings.Contains(line, m) {
			return true
		}
	}
	return false
}

func parseSpans(line string) []Span {
	var spans []Span
	last := 0
	for _, loc := range boldRun.FindAllStringSubmatchIndex(line, -1) {
		if loc[0] > last {
			spans = appendPlain(spans, line[last:loc[0]])
		}
		if inner := line[loc[2]:loc[3]]; inner != "" {
			spans = append(spans, Span{Text: inner, Bold: true})
		}
		last = loc[1]
	}
	if last < len(line) {
		spans = appendPlain(spans, line[last:])
	}
	return spans
}

// appendPlain adds a non-bold run; stray single asterisks are dropped.
func appendPlain(spans []Span, text string) []Span {
	text = strings.ReplaceAll(text, "*", "")
	if text == "" {
		return spans
	}
	return append(spans, Span{Text: text})
}

// plainText flattens blocks back into display text, one line per block.
func plainText(blocks []Block) string {
	var b strings.Builder
	for i, blk := range blocks {
		if i > 0 {
			b.WriteString("\n")
		}
		if blk.Kind == BlockBullet {
			b.WriteString("- ")
		}
		for _, sp := range blk.Spans {
			b.WriteString(sp.Text)
		}
	}
	return b.String()
}
