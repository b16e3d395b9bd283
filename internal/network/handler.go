//START OF FILE pickleball/internal/network/handler.go
package network

// EventHandler connects the transport to the game layer. All three callbacks
// run on the hub goroutine, one at a time, so implementations may send to
// any registered client from inside them.
type EventHandler interface {
	OnConnect(c *Client)
	OnDisconnect(c *Client)
	OnMessage(c *Client, msg Message)
}

//END OF FILE pickleball/internal/network/handler.go
