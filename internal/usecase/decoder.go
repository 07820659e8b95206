package usecase

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/pricelens/backend/internal/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DecodeSource decodes one input file into a batch of raw records.
// Accepts a JSON array of objects or a sequence of JSON objects (one per line or
// concatenated). Malformed entries are skipped and counted; the file only fails as
// a whole when nothing usable can be read from it.
func DecodeSource(file domain.SourceFile) (domain.RawBatch, error) {
	batch := domain.RawBatch{FileName: file.Name}
	if file.Err != nil {
		return batch, fmt.Errorf("%w: %v", domain.ErrMalformedSource, file.Err)
	}

	content := bytes.TrimSpace(bytes.TrimPrefix(file.Content, utf8BOM))
	if len(content) == 0 {
		return batch, fmt.Errorf("%w: empty file", domain.ErrMalformedSource)
	}

	var err error
	if content[0] == '[' {
		batch.Records, batch.MalformedLines, err = decodeArray(content)
	} else {
		batch.Records, batch.MalformedLines, err = decodeStream(content)
	}
	if err != nil {
		return batch, err
	}

	if len(batch.Records) == 0 && batch.MalformedLines > 0 {
		return batch, fmt.Errorf("%w: no readable records (%d malformed)", domain.ErrMalformedSource, batch.MalformedLines)
	}
	return batch, nil
}

func decodeArray(content []byte) ([]domain.RawRecord, int, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(content, &items); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", domain.ErrMalformedSource, err)
	}

	records := make([]domain.RawRecord, 0, len(items))
	malformed := 0
	for _, item := range items {
		rec, err := decodeObject(item)
		if err != nil {
			malformed++
			continue
		}
		records = append(records, rec)
	}
	return records, malformed, nil
}

// decodeStream reads JSON objects one per line or concatenated. A broken object is
// counted and skipped by resuming at the next object that starts a line or directly
// follows a closing brace; records decoded before and after it are kept.
func decodeStream(content []byte) ([]domain.RawRecord, int, error) {
	var records []domain.RawRecord
	malformed := 0

	pos := 0
	for pos < len(content) {
		dec := json.NewDecoder(bytes.NewReader(content[pos:]))
		dec.UseNumber()

		resumed := false
		for !resumed {
			offset := pos + int(dec.InputOffset())
			var rec domain.RawRecord
			err := dec.Decode(&rec)
			if errors.Is(err, io.EOF) {
				return records, malformed, nil
			}

			var typeErr *json.UnmarshalTypeError
			switch {
			case err == nil && rec != nil:
				records = append(records, rec)
			case err == nil, errors.As(err, &typeErr):
				// null or a non-object value; the decoder is still in sync
				malformed++
			default:
				malformed++
				next := nextObjectStart(content, skipSpace(content, offset)+1)
				if next < 0 {
					return records, malformed, nil
				}
				pos = next
				resumed = true
			}
		}
	}
	return records, malformed, nil
}

func skipSpace(content []byte, i int) int {
	for i < len(content) && isJSONSpace(content[i]) {
		i++
	}
	return i
}

// nextObjectStart returns the index of the first '{' at or after from that sits in
// column zero or follows a '}' on the same line, or -1.
func nextObjectStart(content []byte, from int) int {
	for i := from; i < len(content); i++ {
		if content[i] != '{' {
			continue
		}
		if i == 0 || content[i-1] == '\n' {
			return i
		}
		j := i - 1
		for j >= 0 && (content[j] == ' ' || content[j] == '\t') {
			j--
		}
		if j >= 0 && content[j] == '}' {
			return i
		}
	}
	return -1
}

func isJSONSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func decodeObject(data []byte) (domain.RawRecord, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var rec domain.RawRecord
	if err := dec.Decode(&rec); err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, errors.New("null entry")
	}
	if dec.More() {
		return nil, errors.New("trailing data after object")
	}
	return rec, nil
}
