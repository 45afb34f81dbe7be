package game

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"kanjibattle/domain/packet"
)

func marshaledAdvance(t *testing.T) []byte {
	t.Helper()
	data, err := json.Marshal(&packet.ClientPacket{Advance: &packet.Advance{}})
	require.NoError(t, err)
	return data
}

func TestReadPump(t *testing.T) {
	t.Parallel()

	t.Run("read error removes the player from the room and releases", func(t *testing.T) {
		t.Parallel()
		mockSocket := &MockWebsocketConnection{}
		mockSocket.On("Read").Return([]byte{}, assert.AnError)
		mockSocket.On("Close", "").Return()

		room := &MockRoom{}
		player := NewPlayer("id", "username", mockSocket)
		player.SetRoom(room)
		room.On("RemoveMe", mock.Anything, player).Return().Once()

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			player.ReadPump()
		}()
		wg.Wait()

		mockSocket.AssertExpectations(t)
		room.AssertExpectations(t)
	})

	t.Run("read error without a room still releases", func(t *testing.T) {
		t.Parallel()
		mockSocket := &MockWebsocketConnection{}
		mockSocket.On("Read").Return([]byte{}, assert.AnError)
		mockSocket.On("Close", "").Return()

		player := NewPlayer("id", "username", mockSocket)

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			player.ReadPump()
		}()
		wg.Wait()

		mockSocket.AssertExpectations(t)
	})

	t.Run("garbage data is dropped", func(t *testing.T) {
		t.Parallel()
		mockSocket := &MockWebsocketConnection{}
		mockSocket.On("Read").Return([]byte{1, 5}, nil).Once()
		mockSocket.On("Read").Return([]byte{}, assert.AnError).Once()
		mockSocket.On("Close", "").Return()

		room := &MockRoom{}
		room.On("RemoveMe", mock.Anything, mock.Anything).Return()
		player := NewPlayer("id", "username", mockSocket)
		player.SetRoom(room)

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			player.ReadPump()
		}()
		wg.Wait()

		room.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
		mockSocket.AssertExpectations(t)
	})

	t.Run("good data is forwarded to the room", func(t *testing.T) {
		t.Parallel()
		mockSocket := &MockWebsocketConnection{}
		mockSocket.On("Read").Return(marshaledAdvance(t), nil).Once()
		mockSocket.On("Read").Return([]byte{}, assert.AnError).Once()
		mockSocket.On("Close", "").Return()

		room := &MockRoom{}
		room.On("RemoveMe", mock.Anything, mock.Anything).Return()

		var forwarded ClientPacketEnvelope
		room.On("Send", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			forwarded = args.Get(1).(ClientPacketEnvelope)
		}).Return().Once()

		player := NewPlayer("id", "username", mockSocket)
		player.SetRoom(room)

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			player.ReadPump()
		}()
		wg.Wait()

		require.NotNil(t, forwarded.clientPacket)
		assert.NotNil(t, forwarded.clientPacket.Advance)
		assert.Equal(t, "id", forwarded.from)
		mockSocket.AssertExpectations(t)
		room.AssertExpectations(t)
	})

	t.Run("spam is rate limited", func(t *testing.T) {
		t.Parallel()
		data := marshaledAdvance(t)
		mockSocket := &MockWebsocketConnection{}
		mockSocket.On("Read").Return(data, nil).Times(100)
		mockSocket.On("Read").Return([]byte{}, assert.AnError).Once()
		mockSocket.On("Close", "").Return()

		room := &MockRoom{}
		room.On("RemoveMe", mock.Anything, mock.Anything).Return()

		forwarded := 0
		room.On("Send", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			forwarded++
		}).Return()

		player := NewPlayer("id", "username", mockSocket)
		player.SetRoom(room)

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			player.ReadPump()
		}()
		wg.Wait()

		// burst of 24, the rest of the 100 reads outruns the refill rate
		assert.Less(t, forwarded, 100)
		assert.GreaterOrEqual(t, forwarded, 24)
		mockSocket.AssertExpectations(t)
	})
}

func TestWritePump(t *testing.T) {
	t.Parallel()

	t.Run("release must stop the goroutine", func(t *testing.T) {
		t.Parallel()
		mockSocket := &MockWebsocketConnection{}
		mockSocket.On("Close", "").Return().Once()
		player := NewPlayer("id", "username", mockSocket)

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			player.WritePump()
		}()
		player.CancelAndRelease()
		wg.Wait()
		mockSocket.AssertExpectations(t)
	})

	t.Run("write error releases the player", func(t *testing.T) {
		t.Parallel()
		mockSocket := &MockWebsocketConnection{}
		data := []byte{1, 2, 3}
		mockSocket.On("Write", data).Return(assert.AnError).Once()
		mockSocket.On("Close", "").Return().Once()
		player := NewPlayer("id", "username", mockSocket)

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			player.WritePump()
		}()
		require.NoError(t, player.Send(data))
		wg.Wait()
		mockSocket.AssertExpectations(t)
	})

	t.Run("correct data writing", func(t *testing.T) {
		t.Parallel()
		mockSocket := &MockWebsocketConnection{}
		data := []byte{1, 2, 3}
		mockSocket.On("Write", data).Return(nil).Once()
		mockSocket.On("Write", data).Return(assert.AnError).Once()
		mockSocket.On("Close", "").Return().Once()
		player := NewPlayer("id", "username", mockSocket)

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			player.WritePump()
		}()
		require.NoError(t, player.Send(data))
		require.NoError(t, player.Send(data))
		wg.Wait()
		mockSocket.AssertExpectations(t)
	})

	t.Run("correct ping handling", func(t *testing.T) {
		t.Parallel()
		mockSocket := &MockWebsocketConnection{}
		mockSocket.On("Ping").Return(assert.AnError).Once()
		mockSocket.On("Close", "").Return().Once()
		player := NewPlayer("id", "username", mockSocket)

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			player.WritePump()
		}()
		require.NoError(t, player.Ping())
		wg.Wait()
		mockSocket.AssertExpectations(t)
	})

	t.Run("send after release fails", func(t *testing.T) {
		t.Parallel()
		mockSocket := &MockWebsocketConnection{}
		mockSocket.On("Close", "").Return().Once()
		player := NewPlayer("id", "username", mockSocket)

		player.CancelAndRelease()
		assert.Error(t, player.Send([]byte{1}))
	})

	t.Run("full outbox rejects instead of blocking", func(t *testing.T) {
		t.Parallel()
		mockSocket := &MockWebsocketConnection{}
		player := NewPlayer("id", "username", mockSocket)

		data := []byte{1}
		for i := 0; i < cap(player.outbox); i++ {
			require.NoError(t, player.Send(data))
		}
		assert.ErrorIs(t, player.Send(data), errOutboxFull)
	})
}
