package basket

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFanout_DeliversToAll(t *testing.T) {
	var a, b []Notification
	f := Fanout{
		NotifierFunc(func(_ context.Context, n Notification) { a = append(a, n) }),
		NotifierFunc(func(_ context.Context, n Notification) { b = append(b, n) }),
	}

	f.Notify(context.Background(), Notification{Kind: KindItemAdded, Title: "Added to cart"})

	assert.Len(t, a, 1)
	assert.Len(t, b, 1)
	assert.Equal(t, KindItemAdded, b[0].Kind)
}
