// Utility program to convert yaml on stdin to formatted json on stdout
package main

import (
	"bytes"
	"encoding/json"
	"io/ioutil"
	"log"
	"os"

	"github.com/lyraproj/dgo/streamer"
	"github.com/lyraproj/dgoyaml/yaml"
)

func main() {
	in, err := ioutil.ReadAll(os.Stdin)
	if err != nil {
		log.Fatal(err)
	}
	v, err := yaml.Unmarshal(in)
	if err != nil {
		log.Fatal(err)
	}
	var out bytes.Buffer
	if err = json.Indent(&out, streamer.MarshalJSON(v, nil), ``, `  `); err != nil {
		log.Fatal(err)
	}
	out.WriteByte('\n')
	if _, err = out.WriteTo(os.Stdout); err != nil {
		log.Fatal(err)
	}
}
