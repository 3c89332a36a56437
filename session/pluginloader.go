package session

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/lyraproj/dgo/dgo"
	"github.com/lyraproj/dgo/loader"
	"github.com/lyraproj/dgo/streamer"
	"github.com/lyraproj/dgo/vf"
	sdk "github.com/lyraproj/hierasdk/hiera"
	log "github.com/sirupsen/logrus"
)

const pluginTransportUnix = `unix`
const pluginTransportTCP = `tcp`

const handshakeTimeout = time.Second * 3
const callTimeout = time.Second * 5
const stopTimeout = time.Second * 3

// pluginMeta is the handshake message that a plugin prints on its stdout
// once it has started its HTTP service.
type pluginMeta struct {
	Version   int                 `json:"version"`
	Address   string              `json:"address"`
	Network   string              `json:"network"`
	Functions map[string][]string `json:"functions"`
}

// a plugin is one running plugin executable
type plugin struct {
	lock      sync.Mutex
	wGroup    sync.WaitGroup
	process   *os.Process
	path      string
	addr      string
	network   string
	functions map[string][]string
}

// a pluginRegistry tracks the plugin processes started by a session so that
// they can be found on subsequent loads and terminated when the session ends
type pluginRegistry struct {
	lock    sync.Mutex
	plugins map[string]*plugin
}

// stopAll terminates all processes known to this registry and empties it
func (r *pluginRegistry) stopAll() {
	r.lock.Lock()
	defer r.lock.Unlock()

	for _, p := range r.plugins {
		p.terminate()
	}
	r.plugins = nil
}

// startPlugin spawns the executable at the given path, or reuses the process from
// an earlier call with the same path, and returns a loader.Multiple map with one
// dgo.Function per function that the plugin announced in its handshake.
func (r *pluginRegistry) startPlugin(opts dgo.Map, path string) dgo.Value {
	r.lock.Lock()
	defer r.lock.Unlock()

	if p, ok := r.plugins[path]; ok {
		return p.functionMap()
	}

	cmd := exec.Command(path)
	cmd.Env = append(os.Environ(),
		`HIERA_MAGIC_COOKIE=`+strconv.Itoa(sdk.MagicCookie),
		`HIERA_PLUGIN_SOCKET_DIR=`+socketDirOption(opts),
		`HIERA_PLUGIN_TRANSPORT=`+transportOption(opts))
	cmd.SysProcAttr = procAttrs

	cmdErr, err := cmd.StderrPipe()
	if err != nil {
		panic(fmt.Errorf(`unable to create stderr pipe to plugin %s: %s`, path, err.Error()))
	}
	cmdOut, err := cmd.StdoutPipe()
	if err != nil {
		panic(fmt.Errorf(`unable to create stdout pipe to plugin %s: %s`, path, err.Error()))
	}
	if err = cmd.Start(); err != nil {
		panic(fmt.Errorf(`unable to start plugin %s: %s`, path, err.Error()))
	}

	// Don't leave the process running if the handshake fails
	defer func() {
		if pe := recover(); pe != nil {
			_ = cmd.Process.Kill()
			panic(pe)
		}
	}()

	p := &plugin{path: path, process: cmd.Process}
	p.wGroup.Add(1)
	go p.forwardStderr(cmdErr)

	// buffered so that a handshake arriving after the timeout doesn't leave the
	// reader goroutine blocked on its send
	metaCh := make(chan interface{}, 1)
	p.wGroup.Add(1)
	go p.readHandshake(metaCh, cmdOut)

	var meta *pluginMeta
	select {
	case <-time.After(handshakeTimeout):
		panic(fmt.Errorf(`timeout while waiting for plugin %s to start`, path))
	case mv := <-metaCh:
		if err, ok := mv.(error); ok {
			panic(fmt.Errorf(`error reading meta data of plugin %s: %s`, path, err.Error()))
		}
		meta = mv.(*pluginMeta)
	}

	// whatever else the plugin writes on stdout must be consumed and tossed
	p.wGroup.Add(1)
	go p.drainStdout(cmdOut)

	p.initialize(meta)
	if r.plugins == nil {
		r.plugins = map[string]*plugin{}
	}
	r.plugins[path] = p
	return p.functionMap()
}

// forwardStderr propagates everything the plugin writes on its stderr to the
// output of the logrus StandardLogger
func (p *plugin) forwardStderr(cmdErr io.Reader) {
	defer p.wGroup.Done()
	out := log.StandardLogger().Out
	reader := bufio.NewReaderSize(cmdErr, 0x10000)
	for {
		line, pfx, err := reader.ReadLine()
		if err != nil {
			if err != io.EOF {
				log.Errorf(`error reading stderr of plugin %s: %s`, p.path, err.Error())
			}
			return
		}
		_, _ = out.Write(line)
		if !pfx {
			_, _ = out.Write([]byte{'\n'})
		}
	}
}

func (p *plugin) readHandshake(metaCh chan interface{}, cmdOut io.Reader) {
	defer p.wGroup.Done()
	meta := &pluginMeta{}
	if err := json.NewDecoder(cmdOut).Decode(meta); err != nil {
		metaCh <- err
	} else {
		metaCh <- meta
	}
}

func (p *plugin) drainStdout(cmdOut io.Reader) {
	defer p.wGroup.Done()
	toss := make([]byte, 0x1000)
	for {
		if _, err := cmdOut.Read(toss); err == io.EOF {
			return
		}
	}
}

var fallbackSocketDir = `/tmp`

func socketDirOption(opts dgo.Map) string {
	if v, ok := opts.Get(`unixSocketDir`).(dgo.String); ok {
		return v.GoString()
	}
	if v := os.TempDir(); v != `` {
		return v
	}
	return fallbackSocketDir
}

func transportOption(opts dgo.Map) string {
	if v, ok := opts.Get(`pluginTransport`).(dgo.String); ok {
		switch s := v.GoString(); s {
		case pluginTransportUnix, pluginTransportTCP:
			return s
		}
	}
	return defaultPluginTransport()
}

// terminate asks the plugin process to stop and waits for it to exit. The
// process is killed if it hasn't exited within stopTimeout.
func (p *plugin) terminate() {
	p.lock.Lock()
	process := p.process
	if process == nil {
		p.lock.Unlock()
		return
	}

	defer func() {
		p.wGroup.Wait()
		p.process = nil
		p.lock.Unlock()
	}()

	if err := terminateProc(process); err != nil {
		_ = process.Kill()
		return
	}

	done := make(chan bool)
	go func() {
		_, _ = process.Wait()
		done <- true
	}()
	select {
	case <-done:
	case <-time.After(stopTimeout):
		_ = process.Kill()
	}
}

func (p *plugin) initialize(meta *pluginMeta) {
	if meta.Version != sdk.ProtoVersion {
		panic(fmt.Errorf(`plugin %s uses unsupported protocol %d`, p.path, meta.Version))
	}
	if meta.Address == `` {
		panic(fmt.Errorf(`plugin %s did not provide a valid address`, p.path))
	}
	if meta.Functions == nil {
		panic(fmt.Errorf(`plugin %s did not provide a valid functions map`, p.path))
	}
	p.addr = meta.Address
	p.network = meta.Network
	if p.network == `` {
		log.Printf(`plugin %s did not provide a valid network, assuming tcp`, p.path)
		p.network = pluginTransportTCP
	}
	p.functions = meta.Functions
}

func (p *plugin) functionMap() dgo.Value {
	m := vf.MutableMap()
	for kind, names := range p.functions {
		for _, n := range names {
			m.Put(n, p.dispatch(kind, n))
		}
	}
	return loader.Multiple(m)
}

// dispatch creates the in-process dgo.Function that relays a call of the named
// plugin function over HTTP
func (p *plugin) dispatch(kind, name string) dgo.Function {
	switch kind {
	case `data_dig`:
		return vf.Value(func(pc sdk.ProviderContext, key dgo.Array) dgo.Value {
			params := optionParams(pc)
			params.Add(`key`, string(streamer.MarshalJSON(key, nil)))
			return p.call(`data_dig`, name, params)
		}).(dgo.Function)
	case `data_hash`:
		return vf.Value(func(pc sdk.ProviderContext) dgo.Value {
			return p.call(`data_hash`, name, optionParams(pc))
		}).(dgo.Function)
	default:
		return vf.Value(func(pc sdk.ProviderContext, key string) dgo.Value {
			params := optionParams(pc)
			params.Add(`key`, key)
			return p.call(`lookup_key`, name, params)
		}).(dgo.Function)
	}
}

func optionParams(pc sdk.ProviderContext) url.Values {
	params := make(url.Values)
	if opts := pc.OptionsMap(); opts.Len() > 0 {
		bld := bytes.Buffer{}
		streamer.New(nil, streamer.DefaultOptions()).Stream(opts, streamer.JSON(&bld))
		params.Add(`options`, strings.TrimSpace(bld.String()))
	}
	return params
}

func (p *plugin) call(luType, name string, params url.Values) dgo.Value {
	host := p.addr
	if p.network == pluginTransportUnix {
		// The real address goes to net.Dial. The URL just needs a placeholder.
		host = p.network
	}
	ad := &url.URL{Scheme: `http`, Host: host, Path: `/` + luType + `/` + name, RawQuery: params.Encode()}
	us := ad.String()
	client := http.Client{
		Timeout: callTimeout,
		Transport: &http.Transport{
			Dial: func(_, _ string) (net.Conn, error) {
				return net.Dial(p.network, p.addr)
			},
		},
	}
	resp, err := client.Get(us)
	if err != nil {
		panic(err.Error())
	}

	defer func() {
		_ = resp.Body.Close()
	}()
	switch resp.StatusCode {
	case http.StatusOK:
		var bts []byte
		if bts, err = ioutil.ReadAll(resp.Body); err == nil {
			return streamer.UnmarshalJSON(bts, nil)
		}
	case http.StatusNotFound:
		return nil
	default:
		if bts, re := ioutil.ReadAll(resp.Body); re == nil {
			err = fmt.Errorf(`%s %s: %s`, us, resp.Status, string(bts))
		} else {
			err = fmt.Errorf(`%s %s`, us, resp.Status)
		}
	}
	panic(err)
}
