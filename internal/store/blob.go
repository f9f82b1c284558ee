package store

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// Blob reads a single blob cell incrementally, one ranged query per read,
// so large payloads never have to be loaded in one piece.
//
// A Blob is not safe for concurrent use. It holds no database resources and
// does not need to be closed.
type Blob struct {
	ctx    context.Context
	store  *Store
	chunk  string
	id     int64
	size   int64
	offset int64
}

// OpenBlob opens the blob stored in column of the row with the given id.
// The column must be a declared blob column of table; a missing row is
// reported as ErrCodeNotFound.
//
// ctx is kept by the Blob and used by Read and ReadAt, so once it is
// cancelled those calls fail. Use ReadAtContext to read under another
// context.
func (s *Store) OpenBlob(ctx context.Context, table *Table, column string, id int64) (*Blob, error) {
	c, ok := table.Column(column)
	if !ok || c.Type != TypeBlob {
		return nil, fmt.Errorf("open blob %s.%s: not a blob column", table.Name(), column)
	}
	if !table.Indexed() {
		return nil, fmt.Errorf("open blob %s.%s: table has no id column", table.Name(), column)
	}

	sizeQuery := fmt.Sprintf("SELECT length(%s) FROM %s WHERE id = ?", column, table.Name())
	size, err := QueryOne(ctx, s, sizeQuery, scanInt64, id)
	if err != nil {
		if IsNotFound(err) {
			return nil, &Error{Code: ErrCodeNotFound, Op: fmt.Sprintf("open blob /%s/%d", table.Name(), id), Err: err}
		}
		return nil, fmt.Errorf("open blob %s.%s: %w", table.Name(), column, err)
	}

	return &Blob{
		ctx:   ctx,
		store: s,
		chunk: fmt.Sprintf("SELECT substr(%s, ?, ?) FROM %s WHERE id = ?", column, table.Name()),
		id:    id,
		size:  size,
	}, nil
}

// Size returns the total length of the blob in bytes.
func (b *Blob) Size() int64 {
	return b.size
}

// Read implements io.Reader.
func (b *Blob) Read(p []byte) (int, error) {
	n, err := b.ReadAt(p, b.offset)
	b.offset += int64(n)
	return n, err
}

// ReadAt implements io.ReaderAt using the context given to OpenBlob.
func (b *Blob) ReadAt(p []byte, off int64) (int, error) {
	return b.ReadAtContext(b.ctx, p, off)
}

// ReadAtContext is ReadAt under ctx instead of the OpenBlob context.
func (b *Blob) ReadAtContext(ctx context.Context, p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, errors.New("blob: negative offset")
	}
	if off >= b.size {
		return 0, io.EOF
	}
	if len(p) == 0 {
		return 0, nil
	}

	want := int64(len(p))
	if remaining := b.size - off; want > remaining {
		want = remaining
	}

	// substr is 1-based.
	data, err := QueryOne(ctx, b.store, b.chunk, scanBytes, off+1, want, b.id)
	if err != nil {
		return 0, fmt.Errorf("read blob: %w", err)
	}

	n := copy(p, data)
	if off+int64(n) >= b.size && n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Seek implements io.Seeker.
func (b *Blob) Seek(offset int64, whence int) (int64, error) {
	var next int64
	switch whence {
	case io.SeekStart:
		next = offset
	case io.SeekCurrent:
		next = b.offset + offset
	case io.SeekEnd:
		next = b.size + offset
	default:
		return 0, errors.New("blob: invalid whence")
	}
	if next < 0 {
		return 0, errors.New("blob: negative position")
	}
	b.offset = next
	return next, nil
}

func scanBytes(row Scanner) ([]byte, error) {
	var data []byte
	if err := row.Scan(&data); err != nil {
		return nil, err
	}
	return data, nil
}
