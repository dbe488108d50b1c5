package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaramaProducer_Send(t *testing.T) {
	mock := mocks.NewSyncProducer(t, NewSaramaConfig())
	mock.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		if string(val) != `{"type":"order.started"}` {
			return errors.New("unexpected payload " + string(val))
		}
		return nil
	})
	p := WrapSarama(mock, "foodbot.orders")

	require.NoError(t, p.Send(context.Background(), []byte("lunch"), []byte(`{"type":"order.started"}`)))
	require.NoError(t, p.Close())
}

func TestSaramaProducer_SendFailure(t *testing.T) {
	mock := mocks.NewSyncProducer(t, NewSaramaConfig())
	mock.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)
	p := WrapSarama(mock, "foodbot.orders")

	err := p.Send(context.Background(), []byte("lunch"), []byte("{}"))
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, p.Close())
}
