// Package proxy implements a MITM proxy that uses urlrewrite to rewrite
// the requests passing through it.  It is the host-side collaborator of
// the engine: blocked requests are answered with 403, redirects with the
// configured 3xx response, and rewritten URIs replace the URI of the
// outgoing request.
package proxy

import (
	"fmt"
	"time"

	"github.com/AdguardTeam/golibs/log"
	"github.com/AdguardTeam/gomitmproxy"
	"github.com/shackerd/urlrewrite"
	"github.com/shackerd/urlrewrite/rulelist"
)

// Config contains the MITM proxy configuration.
type Config struct {
	// ProxyConfig is the config of the MITM proxy.
	ProxyConfig gomitmproxy.Config

	// RulesPaths are the paths to the rewrite rule files, applied in the
	// order they are listed.
	RulesPaths []string
}

// String returns the server's configuration description.
func (c *Config) String() string {
	str := ""
	str += fmt.Sprintf("Listen addr: %s\n", c.ProxyConfig.ListenAddr.String())
	str += fmt.Sprintf("MITM status: %v\n", c.ProxyConfig.MITMConfig != nil)

	if c.ProxyConfig.Username != "" {
		str += fmt.Sprintf("Proxy auth: %s/%s\n", c.ProxyConfig.Username, c.ProxyConfig.Password)
	}

	if len(c.RulesPaths) > 0 {
		str += fmt.Sprintf("Rule files: %d\n", len(c.RulesPaths))
		for i, v := range c.RulesPaths {
			str += fmt.Sprintf("%d: %s\n", i, v)
		}
	}

	return str
}

// Server contains the current server state.
type Server struct {
	// proxyServer is the MITM proxy server instance.
	proxyServer *gomitmproxy.Proxy

	// engine is the rewriting engine.
	engine *urlrewrite.Engine

	// createdAt is the time when the server was created.
	createdAt time.Time

	// Config is the server configuration.
	Config
}

// NewServer creates a new instance of the MITM server.
func NewServer(config Config) (*Server, error) {
	log.Info("Initializing the proxy server:\n%s", config.String())

	s := &Server{
		createdAt: time.Now(),
		Config:    config,
	}

	engine, err := buildEngine(config)
	if err != nil {
		return nil, err
	}

	s.engine = engine
	s.ProxyConfig.OnRequest = s.onRequest
	s.proxyServer = gomitmproxy.NewProxy(s.ProxyConfig)

	return s, nil
}

// Start starts the proxy server.
func (s *Server) Start() error {
	return s.proxyServer.Start()
}

// Close stops the proxy server.
func (s *Server) Close() {
	s.proxyServer.Close()
}

// buildEngine builds a new rewrite engine from the configured rule files.
func buildEngine(config Config) (*urlrewrite.Engine, error) {
	var lists []rulelist.RuleList

	for listID, path := range config.RulesPaths {
		list, err := rulelist.NewFileRuleList(listID, path)
		if err != nil {
			return nil, fmt.Errorf("failed to create rule list %d: %w", listID, err)
		}

		lists = append(lists, list)
	}

	ruleStorage, err := rulelist.NewRuleStorage(lists)
	if err != nil {
		return nil, fmt.Errorf("cannot initialize rule storage: %w", err)
	}

	return urlrewrite.NewEngine(ruleStorage)
}
