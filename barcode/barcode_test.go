package barcode

import (
	"testing"

	"lotqc/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		code string
		want Result
	}{
		{
			name: "all elements",
			code: "0114987123456789112301151728063010LOT42",
			want: Result{
				Gtin14:         "14987123456789",
				LotNumber:      "LOT42",
				ProductionDate: model.NewDate(2023, 1, 15),
				ExpirationDate: model.NewDate(2028, 6, 30),
			},
		},
		{
			name: "human readable with parentheses",
			code: "(01)14987123456789(17)270400(10)A1",
			want: Result{
				Gtin14:         "14987123456789",
				LotNumber:      "A1",
				ExpirationDate: model.NewDate(2027, 4, 30),
			},
		},
		{
			name: "lot terminated by group separator",
			code: "]d2010491234567890410ABC\x1d11280215",
			want: Result{
				Gtin14:         "04912345678904",
				LotNumber:      "ABC",
				ProductionDate: model.NewDate(2028, 2, 15),
			},
		},
		{
			name: "parenthesized lot followed by two dates",
			code: "(01)14987123456789(10)LOT42(17)280630(11)230115",
			want: Result{
				Gtin14:         "14987123456789",
				LotNumber:      "LOT42",
				ProductionDate: model.NewDate(2023, 1, 15),
				ExpirationDate: model.NewDate(2028, 6, 30),
			},
		},
		{
			name: "lot followed by two dates without separator",
			code: "0114987123456789100A1728063011230115",
			want: Result{
				Gtin14:         "14987123456789",
				LotNumber:      "0A",
				ProductionDate: model.NewDate(2023, 1, 15),
				ExpirationDate: model.NewDate(2028, 6, 30),
			},
		},
		{
			name: "lot followed by expiration without separator",
			code: "010491234567890410ABC17280615",
			want: Result{
				Gtin14:         "04912345678904",
				LotNumber:      "ABC",
				ExpirationDate: model.NewDate(2028, 6, 15),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.code)
			require.NoError(t, err)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestParse_DayZeroIsLastDayOfMonth(t *testing.T) {
	got, err := Parse("011498712345678917240200")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", got.ExpirationDate.String())
}

func TestParse_Errors(t *testing.T) {
	tests := map[string]string{
		"empty":          "",
		"blank":          "   ",
		"truncated gtin": "01123",
		"no gtin":        "1728063010LOT42",
		"month 13":       "011498712345678917281332",
		"unsupported ai": "011498712345678921SERIAL",
		"dangling digit": "01149871234567891",
		"short date":     "(01)14987123456789(17)2806(10)A",
	}
	for name, code := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(code)
			assert.Error(t, err)
		})
	}
}
