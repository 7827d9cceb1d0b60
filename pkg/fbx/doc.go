// Package fbx is a streaming codec for the FBX interchange file format.
//
// It operates at the "XML level" of FBX: generic named nodes carrying typed
// properties, with no interpretation of meshes, materials, or any other
// domain object. A [Reader] turns a byte stream (binary or ASCII FBX) into a
// pull-based sequence of [Event] values; a [Writer] does the reverse,
// turning a sequence of [Event] values into a binary or ASCII byte stream.
//
// # Basic usage
//
//	r := fbx.NewReader(f, fbx.ReaderConfig{})
//	for {
//	    ev, err := r.Next()
//	    if errors.Is(err, io.EOF) {
//	        break
//	    }
//	    if err != nil {
//	        return err
//	    }
//	    // handle ev
//	}
//
//	version := uint32(7400)
//	w := fbx.NewWriter(out, fbx.WriterConfig{FBXVersion: &version})
//	w.Write(fbx.NewStartFbx(fbx.Binary(7400)))
//	w.Write(fbx.NewStartNode("Objects", nil))
//	w.Write(fbx.NewEndNode())
//	w.Write(fbx.NewEndFbx())
//
// # Concurrency
//
// A [Reader] or [Writer] is not safe for concurrent use. Each handle drives a
// single stream, synchronously, on the calling goroutine.
//
// # Error handling
//
// Reader and writer errors are [*Error] and [*WriteError] respectively, both
// carrying a byte position and a closed set of kinds. Use [errors.Is] against
// the Err* sentinels, or [errors.As] to inspect position/kind directly.
package fbx
