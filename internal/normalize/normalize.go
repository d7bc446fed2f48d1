// Package normalize turns raw user input (text, a link, an image or a file)
// into the text or attachment the analysis calls consume.
package normalize

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"parttimepal-backend/internal/extract"
	"parttimepal-backend/internal/llm"
	"parttimepal-backend/internal/shared/telemetry"
)

// Sentinel is the literal a link read returns when nothing usable was found.
const Sentinel = "ERROR_CANNOT_READ_LINK"

const (
	// MinTextLength is the shortest input, in characters, worth analysing.
	MinTextLength = 10
	// minLinkTextLength treats shorter link reads as failures.
	minLinkTextLength = 50
)

// Kind is the input variant chosen by the user.
type Kind string

const (
	KindText  Kind = "text"
	KindURL   Kind = "url"
	KindImage Kind = "image"
	KindFile  Kind = "file"
)

// RawInput is one user submission before normalization.
type RawInput struct {
	Kind     Kind
	Text     string
	URL      string
	Data     []byte
	MIMEType string
	FileName string
}

// TextInput wraps pasted text.
func TextInput(s string) RawInput { return RawInput{Kind: KindText, Text: s} }

// URLInput wraps a posting link.
func URLInput(u string) RawInput { return RawInput{Kind: KindURL, URL: u} }

// ImageInput wraps a screenshot.
func ImageInput(data []byte, mimeType string) RawInput {
	return RawInput{Kind: KindImage, Data: data, MIMEType: mimeType}
}

// FileInput wraps an uploaded document.
func FileInput(data []byte, mimeType, fileName string) RawInput {
	return RawInput{Kind: KindFile, Data: data, MIMEType: mimeType, FileName: fileName}
}

// Document is normalized file content: text or one inline attachment.
type Document struct {
	Text       string
	Attachment *llm.Part
}

// Attached reports whether the document travels as binary.
func (d Document) Attached() bool { return d.Attachment != nil }

// Normalizer converts RawInput using the provider where reading is needed.
type Normalizer struct {
	Provider llm.Provider
	Model    string
	Files    FileTable
	// Extract converts documents locally for HandleExtract entries.
	Extract func(ctx context.Context, data []byte, mimeType, fileName string) (string, error)
}

// New builds a Normalizer with the default file table.
func New(provider llm.Provider, model string, localExtract []string) *Normalizer {
	return &Normalizer{
		Provider: provider,
		Model:    model,
		Files:    DefaultFileTable().WithLocalExtract(localExtract),
		Extract:  extract.Text,
	}
}

// Validate rejects text too short to analyse or still carrying the link
// sentinel.
func Validate(text string) error {
	if strings.Contains(text, Sentinel) {
		return ErrCannotReadLink
	}
	if utf8.RuneCountInString(strings.TrimSpace(text)) < MinTextLength {
		return ErrContentTooShort
	}
	return nil
}

// Normalize produces validated analysis text from a text, link or image input.
func (n *Normalizer) Normalize(ctx context.Context, in RawInput) (string, error) {
	var text string
	switch in.Kind {
	case KindText, "":
		text = in.Text
	case KindURL:
		text = n.FromURL(ctx, in.URL)
		if text == Sentinel {
			return "", ErrCannotReadLink
		}
	case KindImage:
		text = n.FromImage(ctx, in.Data, in.MIMEType)
		if text == MsgImageFailed || text == MsgImageEmpty {
			return "", fmt.Errorf("%w: %s", ErrImageUnreadable, text)
		}
	default:
		return "", fmt.Errorf("%w: %s input", ErrUnsupportedFile, in.Kind)
	}
	if err := Validate(text); err != nil {
		return "", err
	}
	return text, nil
}

// FromImage transcribes a screenshot. It never fails; problems come back as
// one of the image messages so the caller can show them.
func (n *Normalizer) FromImage(ctx context.Context, data []byte, mimeType string) string {
	if len(data) == 0 || n.Provider == nil {
		return MsgImageFailed
	}
	mimeType = extract.DetectMIME(data, mimeType, "")
	if !strings.HasPrefix(mimeType, "image/") {
		return MsgImageFailed
	}
	prompt, err := llm.RenderPrompt(llm.PromptImageExtract, nil)
	if err != nil {
		return MsgImageFailed
	}
	resp, err := n.Provider.Generate(ctx, llm.Request{
		Call:  "image_extract",
		Model: n.Model,
		Parts: []llm.Part{llm.BinaryPart(data, mimeType), llm.TextPart(prompt)},
	})
	if err != nil {
		telemetry.Warn("normalize.image_failed", map[string]any{
			"request_id": telemetry.RequestIDFromContext(ctx),
			"error":      err,
		})
		return MsgImageFailed
	}
	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return MsgImageEmpty
	}
	return text
}

// FromURL reconstructs a posting from a link through web search. Any failure,
// including a thin answer, is coerced to Sentinel.
func (n *Normalizer) FromURL(ctx context.Context, rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" || n.Provider == nil {
		return Sentinel
	}
	prompt, err := llm.RenderPrompt(llm.PromptURLExtract, map[string]string{
		"URL":      rawURL,
		"Sentinel": Sentinel,
	})
	if err != nil {
		return Sentinel
	}
	resp, err := n.Provider.Generate(ctx, llm.Request{
		Call:  "url_extract",
		Model: n.Model,
		Parts: []llm.Part{llm.TextPart(prompt)},
		Tools: []llm.Tool{llm.ToolWebSearch},
	})
	if err != nil {
		telemetry.Warn("normalize.link_failed", map[string]any{
			"request_id": telemetry.RequestIDFromContext(ctx),
			"error":      err,
		})
		return Sentinel
	}
	text := strings.TrimSpace(resp.Text)
	if strings.Contains(text, Sentinel) || utf8.RuneCountInString(text) < minLinkTextLength {
		return Sentinel
	}
	return text
}

// PrepareFile routes an uploaded file by the file table: inline attachment,
// decoded text, or local extraction.
func (n *Normalizer) PrepareFile(ctx context.Context, data []byte, mimeType, fileName string) (Document, error) {
	if len(data) == 0 {
		return Document{}, ErrEmptyInput
	}
	detected := extract.DetectMIME(data, mimeType, fileName)
	handling, ok := n.Files.Lookup(detected, fileName)
	if !ok {
		return Document{}, fmt.Errorf("%w: %s", ErrUnsupportedFile, detected)
	}

	switch handling {
	case HandleAttach:
		part := llm.BinaryPart(data, attachMIME(detected, fileName))
		return Document{Attachment: &part}, nil
	case HandleText:
		text, err := extract.DecodeText(data)
		if err != nil {
			return Document{}, fmt.Errorf("%w: %w", ErrUnsupportedFile, err)
		}
		if err := Validate(text); err != nil {
			return Document{}, err
		}
		return Document{Text: text}, nil
	case HandleExtract:
		extractFn := n.Extract
		if extractFn == nil {
			extractFn = extract.Text
		}
		text, err := extractFn(ctx, data, detected, fileName)
		if err != nil {
			return Document{}, fmt.Errorf("%w: %w", ErrUnsupportedFile, err)
		}
		if err := Validate(text); err != nil {
			return Document{}, err
		}
		return Document{Text: text}, nil
	}
	return Document{}, fmt.Errorf("%w: %s", ErrUnsupportedFile, detected)
}
