package gameparams

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/wowsunpack/wowsunpack/internal/xerrors"
)

func TestUnpackReturnsErrFfi(t *testing.T) {
	err := Unpack("/tmp/GameParams.data", true)
	assert.ErrorIs(t, err, xerrors.ErrFfi)
}

func TestUnpackReportsCompactFlag(t *testing.T) {
	err := Unpack("/tmp/GameParams.data", false)
	assert.Contains(t, err.Error(), "compact=false")
}
