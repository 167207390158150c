package extract

import (
	"testing"
	"time"
)

func TestParseProducerFormat(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want time.Time
	}{
		{
			name: "abbreviated month pm",
			raw:  "Mar 16, 2023 11:23 pm",
			want: time.Date(2023, time.March, 16, 23, 23, 0, 0, time.Local),
		},
		{
			name: "full month name",
			raw:  "March 16, 2023 11:23 pm",
			want: time.Date(2023, time.March, 16, 23, 23, 0, 0, time.Local),
		},
		{
			name: "uppercase am",
			raw:  "JAN 2, 2020 9:05 AM",
			want: time.Date(2020, time.January, 2, 9, 5, 0, 0, time.Local),
		},
		{
			name: "noon",
			raw:  "Jul 4, 2021 12:00 pm",
			want: time.Date(2021, time.July, 4, 12, 0, 0, 0, time.Local),
		},
		{
			name: "midnight",
			raw:  "Jul 4, 2021 12:00 am",
			want: time.Date(2021, time.July, 4, 0, 0, 0, 0, time.Local),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseTimestamp(tt.raw)
			if got == nil {
				t.Fatalf("ParseTimestamp(%q) = nil, want %v", tt.raw, tt.want)
			}
			if *got != tt.want.UnixMilli() {
				t.Errorf("ParseTimestamp(%q) = %d, want %d", tt.raw, *got, tt.want.UnixMilli())
			}
		})
	}
}

func TestParseGenericFormats(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Time
	}{
		{"2023-03-16T23:23:00Z", time.Date(2023, time.March, 16, 23, 23, 0, 0, time.UTC)},
		{"2023-03-16 23:23:00", time.Date(2023, time.March, 16, 23, 23, 0, 0, time.Local)},
		{"2023-03-16 23:23", time.Date(2023, time.March, 16, 23, 23, 0, 0, time.Local)},
		{"2023-03-16", time.Date(2023, time.March, 16, 0, 0, 0, 0, time.Local)},
	}

	for _, tt := range tests {
		got := ParseTimestamp(tt.raw)
		if got == nil {
			t.Errorf("ParseTimestamp(%q) = nil, want %v", tt.raw, tt.want)
			continue
		}
		if *got != tt.want.UnixMilli() {
			t.Errorf("ParseTimestamp(%q) = %d, want %d", tt.raw, *got, tt.want.UnixMilli())
		}
	}
}

func TestParseTimestampUnparseable(t *testing.T) {
	for _, raw := range []string{
		"",
		"yesterday",
		"Mar 2023",
		"16/03/2023ish",
		"Foo 16, 2023 11:23 pm",
		"Mar 16, 2023 13:23 pm", // out-of-range 12h clock
	} {
		if got := ParseTimestamp(raw); got != nil {
			t.Errorf("ParseTimestamp(%q) = %d, want nil", raw, *got)
		}
	}
}

func TestParseTimestampTrimsInput(t *testing.T) {
	got := ParseTimestamp("  Mar 16, 2023 11:23 pm  ")
	if got == nil {
		t.Fatal("ParseTimestamp with surrounding whitespace should still parse")
	}
	want := time.Date(2023, time.March, 16, 23, 23, 0, 0, time.Local).UnixMilli()
	if *got != want {
		t.Errorf("got %d, want %d", *got, want)
	}
}
