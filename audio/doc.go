// SPDX-License-Identifier: EPL-2.0

// Package audio defines the decoding primitives shared by the format
// packages.
//
// A Source streams interleaved signed 16-bit samples:
//
//	type Source interface {
//	    SampleRate() int
//	    Channels() int
//	    ReadSamples(dst []int16) (int, error)
//	    Close() error
//	}
//
// ReadSamples returns the number of int16 values written, not frames. Sources
// that decode whole frames reject a dst that cannot hold them with
// ErrInvalidDstSize. io.EOF marks the end of the stream and may come with the
// last samples:
//
//	for {
//	    n, err := src.ReadSamples(buf)
//	    use(buf[:n])
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        return err
//	    }
//	}
//
// A Decoder turns an io.Reader into a Source, and a Registry maps format keys
// (file extensions) to decoders:
//
//	registry := audio.NewRegistry()
//	registry.Register("wav", wav.Decoder{})
//	decoder, ok := registry.ForPath("loops/drums.wav")
package audio
