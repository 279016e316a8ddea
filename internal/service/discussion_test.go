package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"approvalflow/internal/apperr"
)

func TestAddCommentSnapshotsAuthorName(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.submit(t)

	entry, err := env.disc.AddComment(ctx, p.ID, env.legal, "is the vendor contract final?")
	require.NoError(t, err)
	assert.Equal(t, env.legal.UserID, entry.AuthorID)
	assert.Equal(t, env.legal.Name, entry.AuthorName)

	g, err := env.st.GetProjectGraph(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, g.Discussions, 1)
	assert.Equal(t, "is the vendor contract final?", g.Discussions[0].Comment)
}

func TestAddCommentValidation(t *testing.T) {
	env := newTestEnv(t)
	p := env.submit(t)

	_, err := env.disc.AddComment(context.Background(), p.ID, env.legal, "   ")
	assert.True(t, apperr.IsCode(err, apperr.CodeValidation))

	_, err = env.disc.AddComment(context.Background(), 99999, env.legal, "hello")
	assert.True(t, apperr.IsCode(err, apperr.CodeNotFound))
}
