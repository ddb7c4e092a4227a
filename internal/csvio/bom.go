package csvio

import "io"

// utf8BOM is the byte order mark Excel and other Windows programs put in
// front of UTF-8 exports.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// BOMSkippingReader wraps an io.Reader and skips a leading UTF-8 BOM.
type BOMSkippingReader struct {
	reader     io.Reader
	bomChecked bool
	buf        [3]byte
	pending    []byte // bytes read during the BOM check that were not a BOM
}

// NewBOMSkippingReader creates a new BOM-skipping reader.
func NewBOMSkippingReader(r io.Reader) *BOMSkippingReader {
	return &BOMSkippingReader{reader: r}
}

// Read implements io.Reader. On the first read, it checks for and skips the BOM.
func (r *BOMSkippingReader) Read(p []byte) (int, error) {
	if !r.bomChecked {
		r.bomChecked = true

		n, err := io.ReadFull(r.reader, r.buf[:])
		switch {
		case err == io.ErrUnexpectedEOF || err == io.EOF:
			// Shorter than a BOM: hand back whatever was there.
			r.pending = r.buf[:n]
		case err != nil:
			return 0, err
		case r.buf != [3]byte(utf8BOM):
			r.pending = r.buf[:n]
		}
	}

	if len(r.pending) > 0 {
		n := copy(p, r.pending)
		r.pending = r.pending[n:]
		return n, nil
	}

	return r.reader.Read(p)
}
