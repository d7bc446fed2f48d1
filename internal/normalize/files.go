package normalize

import (
	"path/filepath"
	"strings"
)

// Handling says how an uploaded file reaches the provider.
type Handling string

const (
	// HandleAttach sends the bytes inline with their MIME type.
	HandleAttach Handling = "attach"
	// HandleText decodes the bytes as UTF-8 and sends them as prompt text.
	HandleText Handling = "text"
	// HandleExtract converts the document to text locally first.
	HandleExtract Handling = "extract"
)

// FileTable maps MIME types and extensions to a Handling.
type FileTable struct {
	byMIME   map[string]Handling
	byPrefix map[string]Handling
	byExt    map[string]Handling
}

// DefaultFileTable covers the document and image types accepted for CVs.
func DefaultFileTable() FileTable {
	return FileTable{
		byMIME: map[string]Handling{
			"application/pdf":    HandleAttach,
			"application/msword": HandleAttach,
			"application/vnd.openxmlformats-officedocument.wordprocessingml.document": HandleAttach,
			"text/plain":       HandleText,
			"text/markdown":    HandleText,
			"text/csv":         HandleText,
			"application/json": HandleText,
		},
		byPrefix: map[string]Handling{
			"image/": HandleAttach,
		},
		byExt: map[string]Handling{
			".pdf":  HandleAttach,
			".doc":  HandleAttach,
			".docx": HandleAttach,
			".png":  HandleAttach,
			".jpg":  HandleAttach,
			".jpeg": HandleAttach,
			".webp": HandleAttach,
			".txt":  HandleText,
			".md":   HandleText,
			".csv":  HandleText,
			".json": HandleText,
		},
	}
}

// WithLocalExtract switches the named kinds ("pdf", "docx") to HandleExtract.
func (t FileTable) WithLocalExtract(kinds []string) FileTable {
	out := FileTable{
		byMIME:   cloneHandling(t.byMIME),
		byPrefix: cloneHandling(t.byPrefix),
		byExt:    cloneHandling(t.byExt),
	}
	for _, k := range kinds {
		switch strings.ToLower(strings.TrimSpace(k)) {
		case "pdf":
			out.byMIME["application/pdf"] = HandleExtract
			out.byExt[".pdf"] = HandleExtract
		case "docx":
			out.byMIME["application/vnd.openxmlformats-officedocument.wordprocessingml.document"] = HandleExtract
			out.byExt[".docx"] = HandleExtract
		}
	}
	return out
}

// Lookup resolves mimeType first and falls back to the file extension.
func (t FileTable) Lookup(mimeType, fileName string) (Handling, bool) {
	if h, ok := t.byMIME[mimeType]; ok {
		return h, true
	}
	for prefix, h := range t.byPrefix {
		if strings.HasPrefix(mimeType, prefix) {
			return h, true
		}
	}
	if h, ok := t.byExt[strings.ToLower(filepath.Ext(fileName))]; ok {
		return h, true
	}
	return "", false
}

func cloneHandling(m map[string]Handling) map[string]Handling {
	out := make(map[string]Handling, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

var extMIME = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".webp": "image/webp",
}

// attachMIME picks the type to declare for an inline attachment.
func attachMIME(detected, fileName string) string {
	if detected != "" && detected != "application/octet-stream" && detected != "application/zip" && detected != "application/x-ole-storage" {
		return detected
	}
	if m, ok := extMIME[strings.ToLower(filepath.Ext(fileName))]; ok {
		return m
	}
	return detected
}
