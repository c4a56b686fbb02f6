package udp_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/opensciencegrid/xrootd-monitoring-shoveler/pkg/udp"
	"github.com/stretchr/testify/require"
)

func TestUDP_Dialer_Standard(t *testing.T) {
	dialer := udp.NewStandardDialer(log)

	t.Run("dial and deliver", func(t *testing.T) {
		conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
		require.NoError(t, err)
		defer conn.Close()

		remote := conn.LocalAddr().(*net.UDPAddr)

		udpConn, err := dialer.Dial(t.Context(), nil, remote)
		require.NoError(t, err)
		defer udpConn.Close()

		msg := []byte("hello")
		_, err = udpConn.Write(msg)
		require.NoError(t, err)

		buf := make([]byte, 64)
		err = conn.SetReadDeadline(time.Now().Add(1 * time.Second))
		require.NoError(t, err)
		n, _, err := conn.ReadFromUDP(buf)
		require.NoError(t, err)
		require.Equal(t, "hello", string(buf[:n]))
	})

	t.Run("tuned socket still delivers", func(t *testing.T) {
		conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
		require.NoError(t, err)
		defer conn.Close()

		tuned := udp.NewStandardDialer(log)
		tuned.TTL = 64
		tuned.WriteBuffer = 1 << 20

		udpConn, err := tuned.Dial(t.Context(), nil, conn.LocalAddr().(*net.UDPAddr))
		require.NoError(t, err)
		defer udpConn.Close()

		_, err = udpConn.Write([]byte("tuned"))
		require.NoError(t, err)

		buf := make([]byte, 64)
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(1*time.Second)))
		n, _, err := conn.ReadFromUDP(buf)
		require.NoError(t, err)
		require.Equal(t, "tuned", string(buf[:n]))
	})

	t.Run("local address binds", func(t *testing.T) {
		conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
		require.NoError(t, err)
		defer conn.Close()

		local := &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)}
		udpConn, err := dialer.Dial(t.Context(), local, conn.LocalAddr().(*net.UDPAddr))
		require.NoError(t, err)
		defer udpConn.Close()
		require.Equal(t, "127.0.0.1", udpConn.LocalAddr().(*net.UDPAddr).IP.String())
	})

	t.Run("missing remote address should fail", func(t *testing.T) {
		_, err := dialer.Dial(t.Context(), nil, nil)
		require.Error(t, err)
		require.ErrorContains(t, err, "failed to dial")
	})

	t.Run("canceled context should fail", func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		cancel()
		_, err := dialer.Dial(ctx, nil, &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 12345})
		require.Error(t, err)
	})
}
