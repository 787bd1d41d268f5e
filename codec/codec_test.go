package codec

import (
	"bytes"
	"testing"

	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/weavetest/assert"
)

type sample struct {
	Count int64
	Name  string
	Keys  [][]byte
	Flag  bool
	Inner *sample
}

func (s *sample) Marshal() ([]byte, error) {
	var e Encoder
	e.Int(1, s.Count)
	e.Text(2, s.Name)
	e.RepeatedRaw(3, s.Keys)
	e.Bool(4, s.Flag)
	if s.Inner != nil {
		if err := e.Message(5, s.Inner); err != nil {
			return nil, err
		}
	}
	return e.Result(), nil
}

func (s *sample) Unmarshal(raw []byte) error {
	*s = sample{}
	d := NewDecoder(raw)
	for d.More() {
		field, err := d.Next()
		if err != nil {
			return err
		}
		switch field {
		case 1:
			s.Count, err = d.Int()
		case 2:
			s.Name, err = d.Text()
		case 3:
			var b []byte
			b, err = d.Raw()
			s.Keys = append(s.Keys, b)
		case 4:
			s.Flag, err = d.Bool()
		case 5:
			s.Inner = &sample{}
			err = d.Message(s.Inner)
		default:
			err = d.Skip()
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func TestEncodeDecode(t *testing.T) {
	in := sample{
		Count: 250000000,
		Name:  "WOW",
		Keys:  [][]byte{[]byte("a"), {}, []byte("ccc")},
		Flag:  true,
		Inner: &sample{Count: -3},
	}
	raw, err := in.Marshal()
	assert.Nil(t, err)

	var out sample
	assert.Nil(t, out.Unmarshal(raw))
	assert.Equal(t, in.Count, out.Count)
	assert.Equal(t, in.Name, out.Name)
	assert.Equal(t, in.Flag, out.Flag)
	assert.Equal(t, int64(-3), out.Inner.Count)
	if len(out.Keys) != 3 || !bytes.Equal(out.Keys[2], []byte("ccc")) || len(out.Keys[1]) != 0 {
		t.Fatalf("unexpected keys: %q", out.Keys)
	}
}

func TestZeroValuesAreNotWritten(t *testing.T) {
	var s sample
	raw, err := s.Marshal()
	assert.Nil(t, err)
	if len(raw) != 0 {
		t.Fatalf("want empty serialization, got %X", raw)
	}
}

func TestUnknownFieldsAreSkipped(t *testing.T) {
	var e Encoder
	e.Int(1, 7)
	e.Text(9, "from the future")
	e.Uint(10, 99)
	e.Text(2, "known")

	var s sample
	assert.Nil(t, s.Unmarshal(e.Result()))
	assert.Equal(t, int64(7), s.Count)
	assert.Equal(t, "known", s.Name)
}

func TestMalformedInput(t *testing.T) {
	cases := map[string][]byte{
		"truncated length":   {0x12, 0x05, 'a'},
		"wrong wire type":    {0x0a, 0x01, 'a'},
		"truncated varint":   {0x08, 0xff},
		"zero field number":  {0x00, 0x01},
		"unsupported groups": {0x0b},
	}
	for testName, raw := range cases {
		t.Run(testName, func(t *testing.T) {
			var s sample
			if err := s.Unmarshal(raw); !errors.ErrInput.Is(err) {
				t.Fatalf("want input error, got %+v", err)
			}
		})
	}
}
