package options

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "agrilink/pkg/domain-errors"
)

func TestList(t *testing.T) {
	svc := NewService([]string{"pickup", "courier"}, []string{"cod", "bank_transfer"})

	delivery, err := svc.List(context.Background(), ListDelivery)
	require.NoError(t, err)
	assert.Equal(t, []string{"pickup", "courier"}, delivery)

	_, err = svc.List(context.Background(), "colors")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))

	assert.Equal(t, []string{"delivery", "payment"}, svc.Names())
}
