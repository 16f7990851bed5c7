package targets

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"jobwatch-engine/internal/domain"
)

func TestParse(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		in   string
		want []domain.SearchTarget
	}{
		{
			name: "place and no place",
			in:   "u1|P1,u2",
			want: []domain.SearchTarget{{URL: "u1", Place: "P1"}, {URL: "u2"}},
		},
		{
			name: "whitespace trimmed",
			in:   " https://src/a?x=1 | Delhi , https://src/b?y=2|Pune ",
			want: []domain.SearchTarget{
				{URL: "https://src/a?x=1", Place: "Delhi"},
				{URL: "https://src/b?y=2", Place: "Pune"},
			},
		},
		{
			name: "only first pipe splits",
			in:   "u1|Delhi|NCR",
			want: []domain.SearchTarget{{URL: "u1", Place: "Delhi|NCR"}},
		},
		{
			name: "empty entries kept",
			in:   "u1,,u2|",
			want: []domain.SearchTarget{{URL: "u1"}, {URL: ""}, {URL: "u2"}},
		},
		{
			name: "empty config",
			in:   "",
			want: []domain.SearchTarget{{URL: ""}},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Parse(tt.in))
		})
	}
}

func TestParsePreservesOrder(t *testing.T) {
	t.Parallel()
	got := Parse("c|3,a|1,b|2")
	places := make([]string, 0, len(got))
	for _, tg := range got {
		places = append(places, tg.Place)
	}
	assert.Equal(t, []string{"3", "1", "2"}, places)
}

func TestLabelDefault(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "Naukri", domain.SearchTarget{URL: "u"}.Label("Naukri"))
	assert.Equal(t, "Pune", domain.SearchTarget{URL: "u", Place: "Pune"}.Label("Naukri"))
}
