package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/quadrant/pkg/domain/types"
)

func TestParseUrgency(t *testing.T) {
	for _, u := range types.AllUrgencies() {
		t.Run(u.String(), func(t *testing.T) {
			got, err := types.ParseUrgency(u.String())
			gt.NoError(t, err).Required()
			gt.Value(t, got).Equal(u)
		})
	}

	t.Run("rejects unknown bucket", func(t *testing.T) {
		_, err := types.ParseUrgency("someday")
		gt.Error(t, err)
	})
}
