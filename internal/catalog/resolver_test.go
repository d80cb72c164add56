package catalog

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/loganlanou/merch-storefront/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

func TestClassifier(t *testing.T) {
	c := ClassifierFor(TShirts())

	tests := []struct {
		color  string
		want   Design
		mapped bool
	}{
		{"Navy", DesignDark, true},
		{"White", DesignLight, true},
		{" mustard ", DesignLight, true},
		{"Teal", DefaultDesign, false},
	}

	for _, tt := range tests {
		t.Run(tt.color, func(t *testing.T) {
			d, ok := c.DesignFor(tt.color)
			assert.Equal(t, tt.mapped, ok)
			if ok {
				assert.Equal(t, tt.want, d)
			}
			assert.Equal(t, tt.want, c.Classify(tt.color))
		})
	}
}

func TestResolveUsesClassifierBucket(t *testing.T) {
	logger, buf := newTestLogger()
	r := NewResolver(Hoodies(), nil, logger, nil)

	v, err := r.Resolve(SizeL, "Navy")
	require.NoError(t, err)
	assert.Equal(t, int64(5541), v.CatalogVariantID)
	assert.Equal(t, DesignDark, v.Design)

	v, err = r.Resolve(SizeM, "Light Pink")
	require.NoError(t, err)
	assert.Equal(t, DesignLight, v.Design)

	assert.NotContains(t, buf.String(), "fallback")
}

func TestResolveDesignFallsBackToOtherBucket(t *testing.T) {
	logger, buf := newTestLogger()
	reg := prometheus.NewRegistry()
	r := NewResolver(TShirts(), nil, logger, metrics.New(reg))

	v, err := r.ResolveDesign(DesignDark, SizeM, "White")
	require.NoError(t, err)
	assert.Equal(t, DesignLight, v.Design)
	assert.Equal(t, int64(20014), v.CatalogVariantID)

	logged := buf.String()
	assert.Contains(t, logged, "variant resolved via fallback design")
	assert.Contains(t, logged, "requested_design=DARK")
	assert.Contains(t, logged, "fallback_design=LIGHT")
}

func TestResolveSurvivesClassifierDrift(t *testing.T) {
	logger, buf := newTestLogger()
	drifted := NewClassifier(map[string]Design{"Navy": DesignLight})
	r := NewResolver(Hoodies(), drifted, logger, nil)

	v, err := r.Resolve(SizeL, "Navy")
	require.NoError(t, err)
	assert.Equal(t, int64(5541), v.CatalogVariantID)
	assert.Contains(t, buf.String(), "fallback_design=DARK")
}

func TestResolveUnmappedColorStartsDark(t *testing.T) {
	logger, buf := newTestLogger()
	r := NewResolver(Hoodies(), NewClassifier(nil), logger, nil)

	v, err := r.Resolve(SizeS, "Black")
	require.NoError(t, err)
	assert.Equal(t, DesignDark, v.Design)
	assert.Empty(t, buf.String())

	v, err = r.Resolve(SizeS, "White")
	require.NoError(t, err)
	assert.Equal(t, DesignLight, v.Design)
	assert.Contains(t, buf.String(), "requested_design=DARK")
}

func TestResolveNotFound(t *testing.T) {
	logger, _ := newTestLogger()
	r := NewResolver(Hoodies(), nil, logger, nil)

	_, err := r.Resolve(SizeL, "Teal")
	assert.ErrorIs(t, err, ErrVariantNotFound)

	_, err = r.ResolveDesign(Design("PASTEL"), SizeOneSize, "Navy")
	assert.ErrorIs(t, err, ErrVariantNotFound)
}

func TestAccessoryResolver(t *testing.T) {
	tests := []struct {
		name    string
		catalog *Catalog[Style]
		color   string
		wantID  int64
		wantErr bool
	}{
		{"cap navy", Caps(), "Navy", 6003, false},
		{"cap default color", Caps(), "", 6000, false},
		{"tote default", Totes(), "", 7000, false},
		{"mug white", Mugs(), "White", 10000, false},
		{"cap unknown", Caps(), "Purple", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := NewAccessoryResolver(tt.catalog, nil).Resolve(tt.color)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrVariantNotFound)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, v.CatalogVariantID)
		})
	}
}
