package api

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGroupsQuery(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    GroupsQuery
		wantErr string
	}{
		{
			name: "defaults",
			raw:  "by=Golongan_Penyusutan",
			want: GroupsQuery{By: "Golongan_Penyusutan", Value: "Biaya_Penyusutan_Bulan", Top: 10},
		},
		{
			name: "explicit",
			raw:  "by=+Lokasi+&value=Nilai_Perolehan&top=3",
			want: GroupsQuery{By: "Lokasi", Value: "Nilai_Perolehan", Top: 3},
		},
		{
			name:    "bad top",
			raw:     "by=Lokasi&top=ten",
			want:    GroupsQuery{By: "Lokasi", Value: "Biaya_Penyusutan_Bulan", Top: 10},
			wantErr: `top must be a valid integer, got "ten"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := url.ParseQuery(tt.raw)
			require.NoError(t, err)

			got, err := ParseGroupsQuery(values, "Biaya_Penyusutan_Bulan", 10)
			if tt.wantErr != "" {
				var qe *QueryError
				require.ErrorAs(t, err, &qe)
				assert.EqualError(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseTopQuery(t *testing.T) {
	got, err := ParseTopQuery(url.Values{"by": {"Nilai_Buku_Bulan_Ini"}, "top": {"0"}}, 10)
	require.NoError(t, err)
	assert.Equal(t, TopQuery{By: "Nilai_Buku_Bulan_Ini", Top: 0}, got)
}

func TestParseSearchQuery(t *testing.T) {
	assert.Equal(t, SearchQuery{Keyword: " kantor"}, ParseSearchQuery(url.Values{"q": {" kantor"}}))
	assert.Equal(t, SearchQuery{}, ParseSearchQuery(url.Values{}))
	assert.Equal(t, ReportQuery{Keyword: "mobil"}, ParseReportQuery(url.Values{"q": {"mobil"}}))
}
