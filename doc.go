/*
Package qbt provides a typed client for the qBittorrent WebUI API (/api/v2).

Highlights:
  - One explicit session per Client: Login, Logout, and an Invalidated state
    when the server rejects the cookie. Credentials are never stored and the
    client never logs in or retries on its own.
  - A static endpoint catalog drives request encoding (query, form,
    multipart) and result decoding (text, Ok./Fails., number, JSON object,
    JSON array, empty body). A body that does not match the declared shape
    is a DECODE_ERROR, never coerced.
  - Classified errors (*ClientError) that match sentinels such as
    ErrNotAuthenticated and ErrNotFound through errors.Is.
  - Optional SOCKS5/HTTP proxy, request pacing and zerolog logging.

Quick start:

	import (
	    "context"
	    "errors"
	    "log"

	    "github.com/qbtkit/qbt"
	)

	func main() {
	    ctx := context.Background()
	    client, err := qbt.New(qbt.Config{BaseURL: "http://localhost:8080"})
	    if err != nil {
	        log.Fatal(err)
	    }
	    if err := client.Login(ctx, qbt.Credentials{Username: "admin", Password: "adminadmin"}); err != nil {
	        log.Fatal(err)
	    }
	    defer client.Close()

	    torrents, err := client.Torrents(ctx, qbt.TorrentListOptions{Filter: qbt.FilterDownloading})
	    if errors.Is(err, qbt.ErrSessionInvalidated) {
	        // log in again
	    }
	    _ = torrents
	}
*/
package qbt
