package usecase

import (
	"encoding/json"
	"errors"
	"os"
	"testing"

	"github.com/pricelens/backend/internal/domain"
)

func TestDecodeSource(t *testing.T) {
	tests := []struct {
		name          string
		content       string
		wantRecords   int
		wantMalformed int
		wantErr       error
	}{
		{
			name:        "json array",
			content:     `[{"titulo":"a","precio":"1"},{"titulo":"b","precio":"2"}]`,
			wantRecords: 2,
		},
		{
			name:          "array with non-object entries",
			content:       `[{"titulo":"a"}, 3, null, {"titulo":"b"}]`,
			wantRecords:   2,
			wantMalformed: 2,
		},
		{
			name:        "json lines",
			content:     "{\"titulo\":\"a\"}\n{\"titulo\":\"b\"}\n\n{\"titulo\":\"c\"}\n",
			wantRecords: 3,
		},
		{
			name:        "concatenated objects",
			content:     `{"titulo":"a"}{"titulo":"b"}`,
			wantRecords: 2,
		},
		{
			name:          "json lines with broken line",
			content:       "{\"titulo\":\"a\"}\n{\"titulo\": oops}\n{\"titulo\":\"c\"}\n",
			wantRecords:   2,
			wantMalformed: 1,
		},
		{
			name: "pretty printed objects with broken object in the middle",
			content: "{\n  \"titulo\": \"a\",\n  \"precio\": \"1\"\n}\n" +
				"{\n  \"titulo\": \"b\",\n  \"precio\": \n}\n" +
				"{\n  \"titulo\": \"c\",\n  \"precio\": \"3\"\n}\n",
			wantRecords:   2,
			wantMalformed: 1,
		},
		{
			name:          "concatenated objects with broken object in the middle",
			content:       `{"titulo":"a"}{"titulo": }{"titulo":"c"}`,
			wantRecords:   2,
			wantMalformed: 1,
		},
		{
			name:          "stream with non-object values",
			content:       "{\"titulo\":\"a\"}\n3\nnull\n{\"titulo\":\"b\"}\n",
			wantRecords:   2,
			wantMalformed: 2,
		},
		{
			name:          "truncated last object",
			content:       "{\"titulo\":\"a\"}\n{\"titulo\":",
			wantRecords:   1,
			wantMalformed: 1,
		},
		{
			name:        "utf-8 byte order mark",
			content:     "\xEF\xBB\xBF[{\"titulo\":\"a\"}]",
			wantRecords: 1,
		},
		{
			name:        "empty array is valid",
			content:     `[]`,
			wantRecords: 0,
		},
		{
			name:    "empty file",
			content: "  \n",
			wantErr: domain.ErrMalformedSource,
		},
		{
			name:    "truncated array",
			content: `[{"titulo":"a"},`,
			wantErr: domain.ErrMalformedSource,
		},
		{
			name:    "garbage",
			content: "not json at all",
			wantErr: domain.ErrMalformedSource,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batch, err := DecodeSource(domain.SourceFile{Name: "dia.json", Content: []byte(tt.content)})
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("DecodeSource() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeSource() error = %v", err)
			}
			if len(batch.Records) != tt.wantRecords {
				t.Errorf("records = %d, want %d", len(batch.Records), tt.wantRecords)
			}
			if batch.MalformedLines != tt.wantMalformed {
				t.Errorf("malformed = %d, want %d", batch.MalformedLines, tt.wantMalformed)
			}
			if batch.FileName != "dia.json" {
				t.Errorf("FileName = %q, want dia.json", batch.FileName)
			}
		})
	}
}

func TestDecodeSource_ReadError(t *testing.T) {
	_, err := DecodeSource(domain.SourceFile{Name: "x.json", Err: os.ErrPermission})
	if !errors.Is(err, domain.ErrMalformedSource) {
		t.Errorf("DecodeSource() error = %v, want ErrMalformedSource", err)
	}
}

func TestDecodeSource_KeepsNumbersExact(t *testing.T) {
	batch, err := DecodeSource(domain.SourceFile{Name: "x.json", Content: []byte(`{"precio": 1.10}`)})
	if err != nil {
		t.Fatalf("DecodeSource() error = %v", err)
	}
	n, ok := batch.Records[0]["precio"].(json.Number)
	if !ok {
		t.Fatalf("precio type = %T, want json.Number", batch.Records[0]["precio"])
	}
	if n.String() != "1.10" {
		t.Errorf("precio = %s, want 1.10", n)
	}
}
