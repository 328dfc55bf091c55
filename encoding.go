package huginn

import (
	"encoding/base64"
	"sync"
)

// Base64 encoder pool to reuse encoding buffers
var base64EncoderPool = sync.Pool{
	New: func() any {
		buf := make([]byte, 0, KittyChunkSize)
		return &buf
	},
}

// base64Encode encodes src reusing a pooled buffer.
func base64Encode(src []byte) string {
	bufPtr := base64EncoderPool.Get().(*[]byte)
	defer base64EncoderPool.Put(bufPtr)

	encodedLen := base64.StdEncoding.EncodedLen(len(src))
	if cap(*bufPtr) < encodedLen {
		*bufPtr = make([]byte, encodedLen)
	} else {
		*bufPtr = (*bufPtr)[:encodedLen]
	}
	base64.StdEncoding.Encode(*bufPtr, src)

	return string(*bufPtr)
}

// base64Chunks base64 encodes data and splits the text into pieces of at
// most size bytes. size must be a multiple of 4 so every piece but the last
// decodes on its own.
func base64Chunks(data []byte, size int) []string {
	encoded := base64Encode(data)
	if encoded == "" {
		return []string{""}
	}
	chunks := make([]string, 0, (len(encoded)+size-1)/size)
	for i := 0; i < len(encoded); i += size {
		chunks = append(chunks, encoded[i:min(i+size, len(encoded))])
	}
	return chunks
}
