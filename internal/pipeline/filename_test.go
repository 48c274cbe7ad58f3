package pipeline_test

import (
	"strings"
	"testing"

	"github.com/rhm-kanzlei/mailroom/internal/pipeline"
)

func TestFilename(t *testing.T) {
	tests := []struct {
		name     string
		internal string
		client   string
		opponent string
		date     string
		keywords []string
		want     string
	}{
		{
			name:     "full document",
			internal: "151/25M",
			client:   "Müller",
			opponent: "HUK-Coburg",
			date:     "2024-03-15",
			keywords: []string{"Mahnung", "Frist"},
			want:     "151_25M_Mueller_HUK-Coburg_2024-03-15_Mahnung_Frist.pdf",
		},
		{
			name: "no reference",
			date: "2024-03-15",
			want: "ohne-az_2024-03-15.pdf",
		},
		{
			name:     "nothing recognized",
			want:     "ohne-az.pdf",
			keywords: nil,
		},
		{
			name:     "umlauts and sharp s",
			internal: "89/24FÜ",
			client:   "Jürgen Weiß",
			want:     "89_24FUe_Juergen_Weiss.pdf",
		},
		{
			name:     "accents folded",
			internal: "77/23TS",
			client:   "René Durré",
			want:     "77_23TS_Rene_Durre.pdf",
		},
		{
			name:     "keywords capped at three",
			internal: "151/25M",
			keywords: []string{"eins", "zwei", "drei", "vier"},
			want:     "151_25M_eins_zwei_drei.pdf",
		},
		{
			name:     "empty keywords dropped",
			internal: "151/25M",
			keywords: []string{"", "Frist"},
			want:     "151_25M_Frist.pdf",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pipeline.Filename(tt.internal, tt.client, tt.opponent, tt.date, tt.keywords)
			if got != tt.want {
				t.Errorf("Filename = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFilenameTruncatesParties(t *testing.T) {
	long := strings.Repeat("a", 40)
	got := pipeline.Filename("151/25M", long, "", "", nil)
	want := "151_25M_" + strings.Repeat("a", 30) + ".pdf"
	if got != want {
		t.Errorf("Filename = %q, want %q", got, want)
	}
}

func TestFilenameTruncatesKeywordPart(t *testing.T) {
	got := pipeline.Filename("151/25M", "", "", "", []string{
		strings.Repeat("b", 25), strings.Repeat("c", 25),
	})

	base := strings.TrimSuffix(strings.TrimPrefix(got, "151_25M_"), ".pdf")
	if len([]rune(base)) > 40 {
		t.Errorf("keyword part %q exceeds 40 runes", base)
	}
}

func TestSubjectLine(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"first line", "Mahnung wegen Rechnung 4711\nSehr geehrte Damen", "Mahnung wegen Rechnung 4711"},
		{"skips leading blanks", "\n   \nKlageerwiderung\nweiter", "Klageerwiderung"},
		{"trims whitespace", "   Beschluss  \n", "Beschluss"},
		{"empty text", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pipeline.SubjectLine(tt.text); got != tt.want {
				t.Errorf("SubjectLine = %q, want %q", got, tt.want)
			}
		})
	}
}
