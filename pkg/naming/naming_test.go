package naming

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Ref
		wantErr bool
	}{
		{name: "main part", input: "stand", want: Ref{Part: "stand"}},
		{name: "instance", input: "seat__ring-chair", want: Ref{Part: "seat", Variant: "ring-chair"}},
		{name: "single underscore is not a delimiter", input: "seat_cushion", want: Ref{Part: "seat_cushion"}},
		{name: "two delimiters", input: "seat__ring__chair", wantErr: true},
		{name: "empty variant", input: "seat__", wantErr: true},
		{name: "empty part", input: "__default", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrMalformedName))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassify(t *testing.T) {
	assert.Equal(t, KindMain, Classify("stand"))
	assert.Equal(t, KindInstance, Classify("seat__ring-chair"))
	assert.Equal(t, KindCamera, Classify("Camera1"))
	assert.Equal(t, KindCamera, Classify("Camera__main"))
	assert.Equal(t, KindMalformed, Classify("a__b__c"))
}

func TestRefName(t *testing.T) {
	assert.Equal(t, "stand", Ref{Part: "stand"}.Name())
	assert.Equal(t, "seat__default", Ref{Part: "seat", Variant: "default"}.Name())
	assert.Equal(t, "beanbag__short-stool", InstanceName("beanbag", "short-stool"))
}

func TestIndex(t *testing.T) {
	idx := NewIndex([]string{
		"stand", "stand__default",
		"seat", "seat__default", "seat__ring-chair",
		"Camera1", "seat__x__y", "seat__default",
	})

	assert.Equal(t, []string{"stand", "seat"}, idx.Main())
	assert.Equal(t, []string{"stand__default", "seat__default", "seat__ring-chair"}, idx.Instances())
	assert.Equal(t, []string{"seat__default", "seat__ring-chair"}, idx.InstancesOf("seat"))
	assert.Empty(t, idx.InstancesOf("beanbag"))

	ref, ok := idx.Lookup("seat__ring-chair")
	require.True(t, ok)
	assert.Equal(t, Ref{Part: "seat", Variant: "ring-chair"}, ref)

	_, ok = idx.Lookup("Camera1")
	assert.False(t, ok, "cameras are excluded from both sets")

	assert.True(t, idx.Named("seat", "ring-chair"))
	assert.False(t, idx.Named("seat", "missing"))
	assert.False(t, idx.Named("stand", ""))

	assert.Equal(t, []Excluded{
		{Name: "Camera1", Kind: KindCamera},
		{Name: "seat__x__y", Kind: KindMalformed},
	}, idx.Excluded())
	assert.Len(t, idx.Names(), 5)
}
