// Package rendezvous implements the handshake that tells a host running the
// application apart from a host that is merely up.
//
// Wire protocol (TCP, plaintext, newline terminated ASCII):
//
//	initiator -> responder   PING_TAURI_APP\n
//	responder -> initiator   TAURI_APP_HERE\n
//
// Any other reply, or no reply, means "not a peer". Messages are read up to
// the first newline or MaxMessageSize bytes, whichever comes first, so a
// message split across several segments is still recognized.
//
// Example usage:
//
//	listener := rendezvous.NewListener(rendezvous.DefaultListenerOptions())
//	if err := listener.Start(ctx); err != nil {
//		gologger.Warning().Msgf("rendezvous listener unavailable: %v", err)
//	}
//	defer listener.Close()
//
//	isPeer := rendezvous.IdentifyPeer(ctx, "192.168.1.20", rendezvous.DefaultPort, time.Second)
package rendezvous
