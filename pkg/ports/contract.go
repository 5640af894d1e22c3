package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/leadchat/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunConversationStoreContract runs a suite of tests to verify that a ConversationStore
// implementation adheres to the defined interface contract.
func RunConversationStoreContract(t *testing.T, store ConversationStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("Save and Load", func(t *testing.T) {
		conv := domain.NewConversation(sessionID, now)
		conv.Status = domain.StatusAwaitingLeadInput
		conv.CurrentNodeID = "leadNode"
		conv.Generation = 3
		conv.Data["welcome"] = "a"
		conv.Data[domain.KeyLeadContext] = "ctx1"
		conv.Transcript = append(conv.Transcript,
			domain.TranscriptEntry{ID: "e1", Text: "Hi", Sender: domain.SenderBot, Timestamp: now,
				Options: []domain.Option{{Label: "A", NextID: "leadNode", Value: "a"}}},
			domain.TranscriptEntry{ID: "e2", Text: "A", Sender: domain.SenderUser, Timestamp: now},
		)

		err := store.Save(ctx, sessionID, conv)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, conv.CurrentNodeID, loaded.CurrentNodeID)
		assert.Equal(t, conv.Status, loaded.Status)
		assert.Equal(t, conv.Generation, loaded.Generation)
		assert.Equal(t, conv.Data, loaded.Data)
		require.Len(t, loaded.Transcript, 2)
		assert.Equal(t, "Hi", loaded.Transcript[0].Text)
		assert.Equal(t, domain.SenderUser, loaded.Transcript[1].Sender)
		assert.Equal(t, conv.Transcript[0].Options, loaded.Transcript[0].Options)
		assert.True(t, now.Equal(loaded.Transcript[0].Timestamp))
	})

	t.Run("Load Is Isolated From Caller Mutation", func(t *testing.T) {
		conv := domain.NewConversation(sessionID, now)
		conv.Data["k"] = "v"
		require.NoError(t, store.Save(ctx, sessionID, conv))

		conv.Data["k"] = "mutated"

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, "v", loaded.Data["k"])
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, sessionID, domain.NewConversation(sessionID, now))
		require.NoError(t, err)

		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, domain.NewConversation(id1, now))
		_ = store.Save(ctx, id2, domain.NewConversation(id2, now))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
