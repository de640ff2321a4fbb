package jsoncodec

import (
	"testing"

	"google.golang.org/grpc/encoding"
)

type sample struct {
	ID     string `json:"id"`
	Salary string `json:"salary"`
}

func TestCodecRegistered(t *testing.T) {
	if encoding.GetCodec(Name) == nil {
		t.Fatalf("codec %q is not registered", Name)
	}
}

func TestCodecRoundTrip(t *testing.T) {
	codec := Codec{}
	data, err := codec.Marshal(&sample{ID: "p-1", Salary: "30000.99"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"id":"p-1","salary":"30000.99"}` {
		t.Fatalf("payload = %s", data)
	}

	var got sample
	if err := codec.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.ID != "p-1" || got.Salary != "30000.99" {
		t.Fatalf("decoded = %+v", got)
	}
}

func TestCodecUnmarshalEmptyPayload(t *testing.T) {
	var got sample
	if err := (Codec{}).Unmarshal(nil, &got); err != nil {
		t.Fatalf("unmarshal empty: %v", err)
	}
}

func TestCodecUnmarshalRejectsMalformedJSON(t *testing.T) {
	var got sample
	if err := (Codec{}).Unmarshal([]byte("{"), &got); err == nil {
		t.Fatal("expected malformed payload error")
	}
}
