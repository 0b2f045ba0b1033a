package audit

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"alessacloud/internal/models"
)

func TestDisabledServiceIsNoOp(t *testing.T) {
	svc := NewService(nil)
	ctx := context.Background()

	err := svc.LogAction(ctx, uuid.New(), uuid.New(), models.AuditActionCreate,
		"order", uuid.New().String(), "Order created", "127.0.0.1")
	assert.NoError(t, err)

	err = svc.LogChange(ctx, uuid.New(), uuid.New(), models.AuditActionUpdate,
		"tenant", uuid.New().String(), "Updated tenant",
		map[string]string{"status": "pending"}, map[string]string{"status": "active"}, "127.0.0.1")
	assert.NoError(t, err)

	logs, total, err := svc.List(ctx, uuid.New(), 1, 20)
	assert.NoError(t, err)
	assert.Nil(t, logs)
	assert.Zero(t, total)
}
