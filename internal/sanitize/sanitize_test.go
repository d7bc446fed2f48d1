package sanitize

import (
	"strings"
	"testing"
)

func TestStripCitations(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "numeric list", in: "Công ty có thật [1, 2].", want: "Công ty có thật ."},
		{name: "single numeric", in: "Địa chỉ rõ ràng[3]", want: "Địa chỉ rõ ràng"},
		{name: "tool output", in: "Đáng tin [First tool output, item 2] và ổn", want: "Đáng tin  và ổn"},
		{name: "in search", in: "Có phốt [mentioned in search results]", want: "Có phốt"},
		{name: "nested leftovers", in: "A [1[2]] B", want: "A  B"},
		{name: "keeps normal brackets", in: "Lương [thỏa thuận]", want: "Lương [thỏa thuận]"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := StripCitations(tt.in); got != tt.want {
				t.Fatalf("StripCitations(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestStripCitationsIdempotent(t *testing.T) {
	inputs := []string{
		"**Kết luận**: Đáng ngờ [1][2, 3] [Second tool output x]\n- có bài bóc phốt [found in search]",
		"Không có gì để xóa.",
		"[[1]]",
		"",
		"Kết luận " + strings.Repeat("[a ", 12) + strings.Repeat(" in search]", 12),
	}
	for _, in := range inputs {
		once := StripCitations(in)
		if twice := StripCitations(once); twice != once {
			t.Fatalf("not idempotent for %q: %q vs %q", in, once, twice)
		}
		plain := StripPlain(in)
		if again := StripPlain(plain); again != plain {
			t.Fatalf("StripPlain not stable for %q: %q vs %q", in, plain, again)
		}
	}
}

func TestStripCitationsDeeplyNested(t *testing.T) {
	in := "Kết luận " + strings.Repeat("[a ", 10) + strings.Repeat(" in search]", 10)
	if got := StripCitations(in); got != "Kết luận" {
		t.Fatalf("StripCitations left %q", got)
	}
}

func TestStripPlainDecodesEntitiesOnce(t *testing.T) {
	tests := map[string]string{
		"a &amp;lt;b&amp;gt; c":      "a &lt;b&gt; c",
		"Lương 20k &amp; thưởng":     "Lương 20k & thưởng",
		"\"việc nhẹ\" & 'lương cao'": "\"việc nhẹ\" & 'lương cao'",
	}
	for in, want := range tests {
		if got := StripPlain(in); got != want {
			t.Fatalf("StripPlain(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestStripPlain(t *testing.T) {
	in := "**Lời khuyên**: Nên hỏi rõ *trước* khi nhận việc [1]\n: dòng thừa\n<b>x</b> &amp; y"
	want := "Lời khuyên: Nên hỏi rõ trước khi nhận việc\ndòng thừa\nx & y"
	if got := StripPlain(in); got != want {
		t.Fatalf("StripPlain = %q, want %q", got, want)
	}
}

func TestStripPlainAllDropsEmpty(t *testing.T) {
	got := StripPlainAll([]string{"**Yêu cầu đặt cọc**", "[1]", "  "})
	if len(got) != 1 || got[0] != "Yêu cầu đặt cọc" {
		t.Fatalf("unexpected result: %v", got)
	}
}

func TestParseMarkdownLite(t *testing.T) {
	in := "**Xác thực công ty**: Có thật [1]\n\n* Địa chỉ **Quận 1**\n- Có website\nKết luận: Đáng tin\nĐoạn thường\n\n"
	blocks := ParseMarkdownLite(in)
	if len(blocks) != 6 {
		t.Fatalf("expected 6 blocks, got %d: %+v", len(blocks), blocks)
	}
	if blocks[0].Kind != BlockHeading || !blocks[0].Spans[0].Bold || blocks[0].Spans[0].Text != "Xác thực công ty" {
		t.Fatalf("unexpected heading block: %+v", blocks[0])
	}
	if blocks[0].Spans[1].Text != ": Có thật" {
		t.Fatalf("expected citation stripped from heading tail, got %q", blocks[0].Spans[1].Text)
	}
	if blocks[1].Kind != BlockSpacer {
		t.Fatalf("expected spacer, got %s", blocks[1].Kind)
	}
	if blocks[2].Kind != BlockBullet || len(blocks[2].Spans) != 2 || !blocks[2].Spans[1].Bold {
		t.Fatalf("unexpected bullet: %+v", blocks[2])
	}
	if blocks[3].Kind != BlockBullet || blocks[3].Spans[0].Text != "Có website" {
		t.Fatalf("unexpected dash bullet: %+v", blocks[3])
	}
	if blocks[4].Kind != BlockHeading {
		t.Fatalf("expected conclusion heading, got %s", blocks[4].Kind)
	}
	if blocks[5].Kind != BlockParagraph {
		t.Fatalf("expected paragraph, got %s", blocks[5].Kind)
	}
	if ParseMarkdownLite("  [1] ") != nil {
		t.Fatalf("expected nil blocks for citation-only text")
	}
}

func TestPlainTextRoundTrip(t *testing.T) {
	blocks := ParseMarkdownLite("- **A** b\nC")
	if got := plainText(blocks); got != "- A b\nC" {
		t.Fatalf("unexpected plain text %q", got)
	}
}
