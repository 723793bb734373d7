package main

import (
	"fmt"
	"io"
	"os"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/encoding/prototext"

	"github.com/jhump/protoaccess/codec"
	"github.com/jhump/protoaccess/protoaccess"
)

// stdin is where "-" inputs are read from.
var stdin io.Reader = os.Stdin

// readMessage reads a message of the given type from path, or from stdin
// if path is "-". Any values and extensions in JSON and text input are
// resolved against the loaded schemas.
func (r *commonRun) readMessage(path string, desc *protoaccess.MessageDescriptor) (protoaccess.Message, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}
	m := desc.NewInstance()
	switch r.cfg.Format {
	case formatJSON:
		err = protojson.UnmarshalOptions{Resolver: r.types}.Unmarshal(data, m)
	case formatText:
		err = prototext.UnmarshalOptions{Resolver: r.types}.Unmarshal(data, m)
	default:
		err = codec.Unmarshal(data, m)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

func (r *commonRun) writeMessage(w io.Writer, m protoaccess.Message) error {
	f := r.cfg.Format
	var data []byte
	var err error
	switch f {
	case formatJSON:
		data, err = protojson.MarshalOptions{Multiline: true, Resolver: r.types}.Marshal(m)
	case formatText:
		data, err = prototext.MarshalOptions{Multiline: true, Resolver: r.types}.Marshal(m)
	default:
		data, err = codec.Marshal(m)
	}
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	if f != formatBinary && (len(data) == 0 || data[len(data)-1] != '\n') {
		_, err = io.WriteString(w, "\n")
	}
	return err
}

// writeOutput writes m to path, or to w if path is empty or "-".
func (r *commonRun) writeOutput(w io.Writer, path string, m protoaccess.Message) error {
	if path == "" || path == "-" {
		return r.writeMessage(w, m)
	}
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := r.writeMessage(out, m); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
