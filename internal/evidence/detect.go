// Package evidence validates the files participants attach to a
// cancellation request. Evidence is screenshots, photos, or exported
// documents, so only a small set of content types is admitted, detected
// from the bytes rather than the declared header.
package evidence

import (
	"bytes"
	"errors"
)

var ErrUnsupportedType = errors.New("unsupported evidence type")

type FileType string

const (
	TypeJPEG FileType = "jpeg"
	TypePNG  FileType = "png"
	TypeWEBP FileType = "webp"
	TypePDF  FileType = "pdf"
)

var mimeByType = map[FileType]string{
	TypeJPEG: "image/jpeg",
	TypePNG:  "image/png",
	TypeWEBP: "image/webp",
	TypePDF:  "application/pdf",
}

// Detect sniffs the leading bytes of an upload and returns its type and
// MIME. Anything unrecognized is refused.
func Detect(head []byte) (FileType, string, error) {
	switch {
	case isJPEG(head):
		return TypeJPEG, mimeByType[TypeJPEG], nil
	case isPNG(head):
		return TypePNG, mimeByType[TypePNG], nil
	case isWEBP(head):
		return TypeWEBP, mimeByType[TypeWEBP], nil
	case isPDF(head):
		return TypePDF, mimeByType[TypePDF], nil
	}
	return "", "", ErrUnsupportedType
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

func isPDF(head []byte) bool {
	return len(head) >= 5 && bytes.Equal(head[:5], []byte("%PDF-"))
}
