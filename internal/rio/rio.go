// Package rio implements short-read-safe line and block reads and a
// short-write-safe write. It plays the role CS:APP's csapp.c rio_*
// functions played for the original C proxy lab, wrapping net.Conn (or
// any io.Reader/io.Writer, for testability) instead of a raw file
// descriptor.
package rio

import (
	"bufio"
	"io"
)

// BufferSize is the internal read buffer size, matching RIO_BUFSIZE
// conventions from the source.
const BufferSize = 4096

// Reader wraps an io.Reader with short-read-safe line and block reads.
type Reader struct {
	br *bufio.Reader
}

// New wraps r for short-read-safe reads.
func New(r io.Reader) *Reader {
	return &Reader{br: bufio.NewReaderSize(r, BufferSize)}
}

// ReadLine reads until and including the next '\n'. It returns io.EOF only
// when the stream ended with no more data at all (the "0 at EOF" case of
// the source's rio_readlineb); a stream that ends mid-line, after some
// bytes were read but before a newline, is reported as
// io.ErrUnexpectedEOF since HTTP requires every header line to be
// terminated.
func (r *Reader) ReadLine() ([]byte, error) {
	line, err := r.br.ReadBytes('\n')
	if err == nil {
		return line, nil
	}
	if err == io.EOF {
		if len(line) == 0 {
			return nil, io.EOF
		}
		return nil, io.ErrUnexpectedEOF
	}
	return nil, err
}

// ReadBlock fills buf as completely as possible, short only at EOF,
// mirroring rio_readnb. n == 0 with err == io.EOF signals a clean
// end-of-stream with no more data; callers loop on ReadBlock until that
// happens.
func (r *Reader) ReadBlock(buf []byte) (int, error) {
	n, err := io.ReadFull(r.br, buf)
	switch err {
	case nil:
		return n, nil
	case io.EOF:
		return 0, io.EOF
	case io.ErrUnexpectedEOF:
		return n, nil
	default:
		return n, err
	}
}

// WriteAll writes every byte of buf to w, looping on short writes until
// all of it lands or an error occurs, mirroring rio_writen. Most io.Writer
// implementations (including net.Conn) already satisfy the "full write or
// error" contract per the io.Writer doc, but the loop is kept explicit so
// the guarantee is visible and independently testable rather than implicit
// in whichever io.Writer happens to be passed in.
func WriteAll(w io.Writer, buf []byte) error {
	for len(buf) > 0 {
		n, err := w.Write(buf)
		if err != nil {
			return err
		}
		if n == 0 {
			return io.ErrShortWrite
		}
		buf = buf[n:]
	}
	return nil
}
