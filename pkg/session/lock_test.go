package session

import (
	"context"
	"fmt"
	"testing"

	"github.com/aretw0/leadchat/pkg/adapters/memory"
	"github.com/aretw0/leadchat/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_LockLifecycle(t *testing.T) {
	g, err := domain.NewGraph([]domain.Node{{ID: "welcome", Message: "Hi"}}, domain.GraphConfig{})
	require.NoError(t, err)

	mgr := NewManager(g, memory.NewStore(), nil)
	ctx := context.Background()
	count := 5000

	for i := 0; i < count; i++ {
		sid := fmt.Sprintf("session-%d", i)
		_, err := mgr.Start(ctx, sid)
		require.NoError(t, err)
		require.NoError(t, mgr.Delete(ctx, sid))
	}

	assert.Empty(t, mgr.locks, "locks must be released once no operation holds them")
}
