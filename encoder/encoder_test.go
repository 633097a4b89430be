package encoder

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/mewkiz/flac"
)

func sineBlock(n int) []int16 {
	block := make([]int16, n)
	for i := range block {
		block[i] = int16(8000 * math.Sin(2*math.Pi*440*float64(i)/SampleRate))
	}
	return block
}

func TestFlacRoundTrip(t *testing.T) {
	e, err := NewFlac()
	if err != nil {
		t.Fatal(err)
	}
	block := sineBlock(BlockSize)
	if err := e.EncodeBlock(block); err != nil {
		t.Fatal(err)
	}
	if err := e.Close(); err != nil {
		t.Fatal(err)
	}

	if e.TotalFrames() != BlockSize {
		t.Errorf("TotalFrames = %d, want %d", e.TotalFrames(), BlockSize)
	}

	stream, err := flac.New(bytes.NewReader(e.Bytes()))
	if err != nil {
		t.Fatalf("encoded output is not valid flac: %v", err)
	}
	defer stream.Close()
	if stream.Info.SampleRate != SampleRate {
		t.Errorf("sample rate = %d, want %d", stream.Info.SampleRate, SampleRate)
	}
	if stream.Info.NChannels != Channels {
		t.Errorf("channels = %d, want %d", stream.Info.NChannels, Channels)
	}
}

func TestWavHeader(t *testing.T) {
	e := NewWav()
	block := sineBlock(1000)
	if err := e.EncodeBlock(block); err != nil {
		t.Fatal(err)
	}
	if err := e.Close(); err != nil {
		t.Fatal(err)
	}

	data := e.Bytes()
	if len(data) != wavHeaderSize+2*len(block) {
		t.Fatalf("len = %d, want %d", len(data), wavHeaderSize+2*len(block))
	}
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		t.Fatal("missing RIFF/WAVE magic")
	}
	if got := binary.LittleEndian.Uint32(data[24:28]); got != SampleRate {
		t.Errorf("sample rate = %d, want %d", got, SampleRate)
	}
	if got := binary.LittleEndian.Uint32(data[40:44]); got != uint32(2*len(block)) {
		t.Errorf("data chunk size = %d, want %d", got, 2*len(block))
	}

	// Payload survives unchanged.
	for i, s := range block {
		got := int16(binary.LittleEndian.Uint16(data[wavHeaderSize+2*i:]))
		if got != s {
			t.Fatalf("sample %d = %d, want %d", i, got, s)
		}
	}
}

func TestNewUnknownFormat(t *testing.T) {
	if _, err := New("mp3"); err == nil {
		t.Fatal("expected error for unknown format")
	}
}
