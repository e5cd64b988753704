// Package client is a Go client for rudis and other RESP2 servers.
//
//	c, err := client.Connect(ctx, "127.0.0.1:6379")
//	if err != nil {
//		return err
//	}
//	defer c.Close()
//
//	if err := c.Set(ctx, "hello", []byte("world")); err != nil {
//		return err
//	}
//	v, ok, err := c.Get(ctx, "hello")
//
// A Client is not safe for concurrent use. Subscribe turns the client
// into a Subscriber, which only receives messages and manages its
// channel set.
package client
