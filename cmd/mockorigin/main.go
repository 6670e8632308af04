// Command mockorigin runs a standalone HTTP origin for manually exercising
// a running proxy, generalizing tools/httpmock/main.go's fixed
// DumpRequest echo server with a -body flag for simple static responses.
package main

import (
	"flag"
	"log"
	"net/http"
	"time"

	"proxylab/internal/testorigin"
)

type options struct {
	addr  string
	body  string
	delay time.Duration
}

func main() {
	opt := options{}
	flag.StringVar(&opt.addr, "l", ":28080", "listen address")
	flag.StringVar(&opt.body, "body", "", "static response body; empty means echo the request back")
	flag.DurationVar(&opt.delay, "delay", 0, "artificial latency before responding (static -body responses only)")
	flag.Parse()

	var handler http.HandlerFunc
	if opt.body == "" {
		handler = testorigin.Echo
	} else {
		handler = testorigin.Static(http.StatusOK, nil, opt.body, opt.delay)
	}

	srv, err := testorigin.New(opt.addr, handler)
	if err != nil {
		log.Fatalln(err)
	}
	log.Println("mockorigin listening on", srv.Addr())
	select {}
}
