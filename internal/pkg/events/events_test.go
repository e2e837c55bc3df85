package events

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubjectPrefix(t *testing.T) {
	assert.Equal(t, "yatube.post.created", (&NATSPublisher{prefix: "yatube"}).Subject(SubjectPostCreated))
	assert.Equal(t, "follow.deleted", (&NATSPublisher{}).Subject(SubjectFollowDeleted))
}

func TestNoopPublisher(t *testing.T) {
	var p Publisher = NoopPublisher{}
	assert.NotPanics(t, func() {
		p.Publish(context.Background(), SubjectPostCreated, PostEvent{PostID: 1})
	})
}

func TestNATSPublisher_Publish(t *testing.T) {
	url := os.Getenv("YATUBE_TEST_NATS_URL")
	if url == "" {
		t.Skip("YATUBE_TEST_NATS_URL not set, skipping NATS test")
	}

	pub, err := Connect(url, "test", zerolog.Nop())
	require.NoError(t, err)
	defer pub.Close()

	sub, err := pub.conn.SubscribeSync("test.comment.created")
	require.NoError(t, err)

	pub.Publish(context.Background(), SubjectCommentCreated, CommentEvent{CommentID: 4, PostID: 2, Author: "leo"})

	var msg *nats.Msg
	msg, err = sub.NextMsg(2 * time.Second)
	require.NoError(t, err)

	var got CommentEvent
	require.NoError(t, json.Unmarshal(msg.Data, &got))
	assert.Equal(t, int64(4), got.CommentID)
	assert.Equal(t, "leo", got.Author)
}
