// Package protocol implements the wire framing for dispatchrpc: every frame
// is a 4-byte big-endian length prefix followed by a body, where the body
// layout depends on direction (a connection's client→server half carries only
// Query bodies, its server→client half carries only Response bodies — the two
// never interleave on the same half, so no frame-type discriminator is
// needed on the wire).
//
// Query body:
//
//	bytes 0..3   dispatch    int32, big-endian
//	bytes 4..7   handlerLen  int32, big-endian, >= 0
//	bytes 8..8+handlerLen-1       handler name, UTF-8
//	bytes 8+handlerLen..end       messageData, opaque
//
// Response body:
//
//	byte  0      ok          1 = success, 0 = failure
//	bytes 1..4   dispatch    int32, big-endian
//	bytes 5..8   errorLen    int32, big-endian, >= 0
//	bytes 9..9+errorLen-1         error message, UTF-8
//	bytes 9+errorLen..end         messageData, opaque
package protocol

import (
	"encoding/binary"
	"io"

	"dispatchrpc/message"
	"dispatchrpc/rpcerr"
)

const lengthPrefixSize = 4

// WriteFrame writes a 4-byte big-endian length prefix followed by body.
// Callers that share a single net.Conn across goroutines must serialize
// their own calls to WriteFrame — interleaved writes would corrupt the
// stream.
func WriteFrame(w io.Writer, body []byte) error {
	prefix := make([]byte, lengthPrefixSize)
	binary.BigEndian.PutUint32(prefix, uint32(len(body)))
	if _, err := w.Write(prefix); err != nil {
		return err
	}
	_, err := w.Write(body)
	return err
}

// ReadFrame reads one complete length-prefixed frame from r, blocking until
// the full body has arrived. It returns ErrShortRead if the connection ends
// in the middle of a frame; a connection that ends cleanly before the first
// byte of a length prefix yields io.EOF.
func ReadFrame(r io.Reader) ([]byte, error) {
	prefix := make([]byte, lengthPrefixSize)
	if _, err := io.ReadFull(r, prefix); err != nil {
		if err == io.ErrUnexpectedEOF {
			return nil, rpcerr.ErrShortRead
		}
		return nil, err
	}
	bodyLen := binary.BigEndian.Uint32(prefix)
	body := make([]byte, bodyLen)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, rpcerr.ErrShortRead
	}
	return body, nil
}

// EncodeQuery lays out a Query body per the format above.
func EncodeQuery(q *message.Query) []byte {
	handler := []byte(q.Handler)
	buf := make([]byte, 8+len(handler)+len(q.MessageData))
	binary.BigEndian.PutUint32(buf[0:4], uint32(q.Dispatch))
	binary.BigEndian.PutUint32(buf[4:8], uint32(len(handler)))
	copy(buf[8:8+len(handler)], handler)
	copy(buf[8+len(handler):], q.MessageData)
	return buf
}

// DecodeQuery parses a Query body. It fails with ErrMalformedFrame when the
// declared handlerLen runs past the end of the buffer.
func DecodeQuery(body []byte) (*message.Query, error) {
	if len(body) < 8 {
		return nil, rpcerr.ErrMalformedFrame
	}
	dispatch := int32(binary.BigEndian.Uint32(body[0:4]))
	handlerLen := int32(binary.BigEndian.Uint32(body[4:8]))
	if handlerLen < 0 || 8+int(handlerLen) > len(body) {
		return nil, rpcerr.ErrMalformedFrame
	}
	handler := string(body[8 : 8+handlerLen])
	data := body[8+handlerLen:]
	messageData := make([]byte, len(data))
	copy(messageData, data)
	return &message.Query{
		Message: message.Message{Dispatch: dispatch, MessageData: messageData},
		Handler: handler,
	}, nil
}

// EncodeResponse lays out a Response body per the format above.
func EncodeResponse(r *message.Response) []byte {
	errMsg := []byte(r.ErrorMsg)
	buf := make([]byte, 9+len(errMsg)+len(r.MessageData))
	if r.Ok {
		buf[0] = 1
	}
	binary.BigEndian.PutUint32(buf[1:5], uint32(r.Dispatch))
	binary.BigEndian.PutUint32(buf[5:9], uint32(len(errMsg)))
	copy(buf[9:9+len(errMsg)], errMsg)
	copy(buf[9+len(errMsg):], r.MessageData)
	return buf
}

// DecodeResponse parses a Response body. It fails with ErrMalformedFrame when
// the declared errorLen runs past the end of the buffer.
func DecodeResponse(body []byte) (*message.Response, error) {
	if len(body) < 9 {
		return nil, rpcerr.ErrMalformedFrame
	}
	ok := body[0] == 1
	dispatch := int32(binary.BigEndian.Uint32(body[1:5]))
	errLen := int32(binary.BigEndian.Uint32(body[5:9]))
	if errLen < 0 || 9+int(errLen) > len(body) {
		return nil, rpcerr.ErrMalformedFrame
	}
	errMsg := string(body[9 : 9+errLen])
	data := body[9+errLen:]
	messageData := make([]byte, len(data))
	copy(messageData, data)
	return &message.Response{
		Message:  message.Message{Dispatch: dispatch, MessageData: messageData},
		Ok:       ok,
		ErrorMsg: errMsg,
	}, nil
}
