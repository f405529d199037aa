package imagemeta

import (
	"bytes"
	"encoding/binary"
	"errors"
)

// Pixel dimensions read from a media file's binary header. Parsing never
// decodes pixel data; it only walks the container structure.
type Dimensions struct {
	Width  int
	Height int
}

// Fallback is used when the header cannot be parsed. Parse failure is
// non-fatal by design: a wrong aspect hint degrades the initial crop, a hard
// error would block the upload.
var Fallback = Dimensions{Width: 1920, Height: 1080}

var ErrUnsupported = errors.New("unsupported media header")

var (
	pngSignature  = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}
	gif87aHeader  = []byte("GIF87a")
	gif89aHeader  = []byte("GIF89a")
	jpegSignature = []byte{0xFF, 0xD8}
)

// Parse extracts pixel dimensions from a JPEG, PNG or GIF header.
func Parse(data []byte) (Dimensions, error) {
	switch {
	case bytes.HasPrefix(data, pngSignature):
		return parsePNG(data)
	case bytes.HasPrefix(data, jpegSignature):
		return parseJPEG(data)
	case bytes.HasPrefix(data, gif87aHeader), bytes.HasPrefix(data, gif89aHeader):
		return parseGIF(data)
	default:
		return Dimensions{}, ErrUnsupported
	}
}

// parsePNG reads the IHDR chunk, which the PNG spec requires to be first:
// 8 signature bytes, 4 length bytes, "IHDR", then big-endian width and height.
func parsePNG(data []byte) (Dimensions, error) {
	if len(data) < 24 || !bytes.Equal(data[12:16], []byte("IHDR")) {
		return Dimensions{}, ErrUnsupported
	}
	width := int(binary.BigEndian.Uint32(data[16:20]))
	height := int(binary.BigEndian.Uint32(data[20:24]))
	if width <= 0 || height <= 0 {
		return Dimensions{}, ErrUnsupported
	}
	return Dimensions{Width: width, Height: height}, nil
}

// parseJPEG scans marker segments until a start-of-frame marker, which holds
// the frame height and width right after the 1-byte sample precision.
func parseJPEG(data []byte) (Dimensions, error) {
	i := 2
	for i+4 <= len(data) {
		if data[i] != 0xFF {
			i++
			continue
		}
		marker := data[i+1]
		switch {
		case marker == 0xFF:
			// Fill byte before the real marker.
			i++
		case marker == 0x01 || (marker >= 0xD0 && marker <= 0xD9):
			// Standalone marker, no length field.
			i += 2
		case isSOFMarker(marker):
			if i+9 > len(data) {
				return Dimensions{}, ErrUnsupported
			}
			height := int(binary.BigEndian.Uint16(data[i+5 : i+7]))
			width := int(binary.BigEndian.Uint16(data[i+7 : i+9]))
			if width <= 0 || height <= 0 {
				return Dimensions{}, ErrUnsupported
			}
			return Dimensions{Width: width, Height: height}, nil
		default:
			length := int(binary.BigEndian.Uint16(data[i+2 : i+4]))
			if length < 2 {
				return Dimensions{}, ErrUnsupported
			}
			i += 2 + length
		}
	}
	return Dimensions{}, ErrUnsupported
}

// isSOFMarker reports whether the marker opens a start-of-frame segment.
// C4, C8 and CC look like SOF codes but are huffman/arithmetic tables.
func isSOFMarker(marker byte) bool {
	if marker < 0xC0 || marker > 0xCF {
		return false
	}
	return marker != 0xC4 && marker != 0xC8 && marker != 0xCC
}

// parseGIF reads the logical screen descriptor: little-endian width and
// height right after the 6-byte version header.
func parseGIF(data []byte) (Dimensions, error) {
	if len(data) < 10 {
		return Dimensions{}, ErrUnsupported
	}
	width := int(binary.LittleEndian.Uint16(data[6:8]))
	height := int(binary.LittleEndian.Uint16(data[8:10]))
	if width <= 0 || height <= 0 {
		return Dimensions{}, ErrUnsupported
	}
	return Dimensions{Width: width, Height: height}, nil
}
