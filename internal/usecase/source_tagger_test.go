package usecase

import (
	"testing"

	"github.com/pricelens/backend/internal/domain"
)

func TestRetailerFromFileName(t *testing.T) {
	tests := []struct {
		name string
		file string
		want string
	}{
		{name: "token before underscore", file: "dia_2025-03-15.json", want: "dia"},
		{name: "no underscore", file: "mercadona.jsonl", want: "mercadona"},
		{name: "directory is ignored", file: "/data/scrapes/carrefour_es_1.json", want: "carrefour"},
		{name: "case preserved", file: "Alcampo_x.json", want: "Alcampo"},
		{name: "leading underscore", file: "_2025.json", want: domain.UnknownRetailer},
		{name: "extension only", file: ".json", want: domain.UnknownRetailer},
		{name: "empty", file: "", want: domain.UnknownRetailer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RetailerFromFileName(tt.file); got != tt.want {
				t.Errorf("RetailerFromFileName(%q) = %q, want %q", tt.file, got, tt.want)
			}
		})
	}
}

func TestTagBatch(t *testing.T) {
	batch := domain.RawBatch{
		FileName: "dia_2025.json",
		Records: []domain.RawRecord{
			{"titulo": "a"},
			{"titulo": "b", "supermercado": "mercadona"},
			{"titulo": "c", "empresa": ""},
			{"titulo": "d", "supermercado": nil},
			{"titulo": "e", "retailer": "  lidl "},
		},
	}

	tagged, fileRetailer := TagBatch(batch)
	if fileRetailer != "dia" {
		t.Errorf("fileRetailer = %q, want dia", fileRetailer)
	}

	want := []string{"dia", "mercadona", domain.UnknownRetailer, domain.UnknownRetailer, "lidl"}
	if len(tagged) != len(want) {
		t.Fatalf("len(tagged) = %d, want %d", len(tagged), len(want))
	}
	for i, w := range want {
		if tagged[i].Retailer != w {
			t.Errorf("record %d retailer = %q, want %q", i, tagged[i].Retailer, w)
		}
		if tagged[i].Raw["titulo"] != batch.Records[i]["titulo"] {
			t.Errorf("record %d not kept in order", i)
		}
	}
}
