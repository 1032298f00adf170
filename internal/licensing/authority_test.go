package licensing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/transitops/ticket-backoffice/internal/model"
)

func TestClient_Interpret(t *testing.T) {
	c := NewClient(Config{})

	t.Run("approve carries the grant", func(t *testing.T) {
		verdict, err := c.interpret(&AuthenticateResponse{
			AuthenticationStatus:  "Approve",
			ProductRegistrationID: 7,
			UniqueIdentifier:      "LIC-7",
			ProductFromDate:       "2025-01-01",
			ProductToDate:         "2025-12-31",
			DeviceCount:           4,
		})
		require.NoError(t, err)
		assert.Equal(t, model.AuthStatusApproved, verdict.Status)
		require.NotNil(t, verdict.Grant)
		assert.Equal(t, int64(7), verdict.Grant.ProductRegistrationID)
		assert.Equal(t, 4, verdict.Grant.DeviceCount)
		require.NotNil(t, verdict.Grant.ProductToDate)
	})

	t.Run("expired and blocked are terminal", func(t *testing.T) {
		verdict, err := c.interpret(&AuthenticateResponse{AuthenticationStatus: "Expired"})
		require.NoError(t, err)
		assert.Equal(t, model.AuthStatusExpired, verdict.Status)

		verdict, err = c.interpret(&AuthenticateResponse{AuthenticationStatus: "Block"})
		require.NoError(t, err)
		assert.Equal(t, model.AuthStatusBlocked, verdict.Status)
	})

	t.Run("waiting answers keep polling", func(t *testing.T) {
		verdict, err := c.interpret(&AuthenticateResponse{AuthenticationStatus: "Pending"})
		require.NoError(t, err)
		assert.True(t, verdict.Waiting)

		verdict, err = c.interpret(&AuthenticateResponse{AuthenticationStatus: "Waiting for approval..."})
		require.NoError(t, err)
		assert.True(t, verdict.Waiting)
	})

	t.Run("unknown status aborts", func(t *testing.T) {
		_, err := c.interpret(&AuthenticateResponse{AuthenticationStatus: "Banana"})
		assert.ErrorIs(t, err, ErrUnknownStatus)
	})

	t.Run("bad grant dates abort", func(t *testing.T) {
		_, err := c.interpret(&AuthenticateResponse{
			AuthenticationStatus: "Approve",
			ProductToDate:        "31-12-2025",
		})
		assert.Error(t, err)
	})
}
