package docsniff

import (
	"bytes"
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"
)

// DocType identifies the document kinds accepted for analysis.
type DocType string

const (
	TypePDF  DocType = "pdf"
	TypeJPEG DocType = "jpeg"
	TypePNG  DocType = "png"
	TypeWEBP DocType = "webp"
	TypeText DocType = "txt"
	TypeDoc  DocType = "doc"
	TypeDocx DocType = "docx"
)

// MaxUploadBytes is the hard cap on uploaded report files.
const MaxUploadBytes = 20 << 20 // 20 MiB

var ErrUnknownType = errors.New("unknown document type")

type Result struct {
	Type DocType
	MIME string
}

var allowedMIMEs = map[string]DocType{
	"application/pdf": TypePDF,
	"image/jpeg":      TypeJPEG,
	"image/png":       TypePNG,
	"image/webp":      TypeWEBP,
	"text/plain":      TypeText,
	"application/msword": TypeDoc,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": TypeDocx,
}

// Allowed reports whether the declared media type is on the accept list.
func Allowed(mime string) bool {
	_, ok := allowedMIMEs[mime]
	return ok
}

// DetectHead classifies a document from its leading bytes.
func DetectHead(head []byte) (Result, error) {
	if len(head) == 0 {
		return Result{}, ErrUnknownType
	}

	if isPDF(head) {
		return Result{Type: TypePDF, MIME: "application/pdf"}, nil
	}
	if isJPEG(head) {
		return Result{Type: TypeJPEG, MIME: "image/jpeg"}, nil
	}
	if isPNG(head) {
		return Result{Type: TypePNG, MIME: "image/png"}, nil
	}
	if isWEBP(head) {
		return Result{Type: TypeWEBP, MIME: "image/webp"}, nil
	}
	if isOLE(head) {
		return Result{Type: TypeDoc, MIME: "application/msword"}, nil
	}
	if isZip(head) {
		// docx is the only zip container on the accept list
		return Result{Type: TypeDocx, MIME: "application/vnd.openxmlformats-officedocument.wordprocessingml.document"}, nil
	}
	if isText(head) {
		return Result{Type: TypeText, MIME: "text/plain"}, nil
	}

	return Result{}, ErrUnknownType
}

func isPDF(head []byte) bool {
	return bytes.HasPrefix(head, []byte("%PDF-"))
}

func isJPEG(head []byte) bool {
	return len(head) > 3 &&
		head[0] == 0xff &&
		head[1] == 0xd8 &&
		head[2] == 0xff
}

func isPNG(head []byte) bool {
	pngMagic := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}
	return len(head) >= len(pngMagic) && bytes.Equal(head[:len(pngMagic)], pngMagic)
}

func isWEBP(head []byte) bool {
	return len(head) >= 12 &&
		bytes.Equal(head[:4], []byte("RIFF")) &&
		bytes.Equal(head[8:12], []byte("WEBP"))
}

func isOLE(head []byte) bool {
	oleMagic := []byte{0xd0, 0xcf, 0x11, 0xe0, 0xa1, 0xb1, 0x1a, 0xe1}
	return len(head) >= len(oleMagic) && bytes.Equal(head[:len(oleMagic)], oleMagic)
}

func isZip(head []byte) bool {
	return len(head) >= 4 &&
		head[0] == 'P' && head[1] == 'K' &&
		head[2] == 0x03 && head[3] == 0x04
}

func isText(head []byte) bool {
	if !utf8.Valid(head) {
		// the head may split a multi-byte rune; tolerate a ragged tail
		trimmed := head
		for i := 0; i < 3 && len(trimmed) > 0; i++ {
			trimmed = trimmed[:len(trimmed)-1]
			if utf8.Valid(trimmed) {
				break
			}
		}
		if !utf8.Valid(trimmed) {
			return false
		}
		head = trimmed
	}
	for _, b := range head {
		if b < 0x09 { // control bytes below TAB mean binary
			return false
		}
	}
	return true
}

func MimeTypeFromHTTP(header http.Header) string {
	contentType := header.Get("Content-Type")
	if contentType == "" {
		return ""
	}
	if idx := strings.Index(contentType, ";"); idx >= 0 {
		return strings.TrimSpace(contentType[:idx])
	}
	return strings.TrimSpace(contentType)
}
