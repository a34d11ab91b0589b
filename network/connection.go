// network/connection.go
package network

import (
	"encoding/json"
	"net"
	"sync"

	"github.com/gorilla/websocket"
)

// Packet 一条 JSON 信封消息。客户端动作带可选的 ack 编号，
// 服务端用 type="ack" + 相同编号直接应答，广播则不带编号。
type Packet struct {
	Type string          `json:"type"`
	Ack  uint32          `json:"ack,omitempty"`
	Data json.RawMessage `json:"data,omitempty"`
}

type Connection interface {
	Emit(msgType string, payload interface{}) error
	AckReply(ackID uint32, payload interface{}) error
	ReadPacket() (*Packet, error)
	Close() error
	RemoteAddr() net.Addr
}

type WSConnection struct {
	conn      *websocket.Conn
	sendMutex sync.Mutex
}

func NewWSConnection(conn *websocket.Conn) *WSConnection {
	return &WSConnection{conn: conn}
}

// Emit 发送一条事件消息（广播或无应答推送）
func (c *WSConnection) Emit(msgType string, payload interface{}) error {
	return c.write(&Packet{Type: msgType, Data: marshal(payload)})
}

// AckReply 对带 ack 编号的动作做直接应答
func (c *WSConnection) AckReply(ackID uint32, payload interface{}) error {
	if ackID == 0 {
		// 客户端没有要求应答
		return nil
	}
	return c.write(&Packet{Type: MsgAck, Ack: ackID, Data: marshal(payload)})
}

func (c *WSConnection) write(p *Packet) error {
	c.sendMutex.Lock()
	defer c.sendMutex.Unlock()
	return c.conn.WriteJSON(p)
}

func (c *WSConnection) ReadPacket() (*Packet, error) {
	var p Packet
	if err := c.conn.ReadJSON(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *WSConnection) Close() error {
	return c.conn.Close()
}

func (c *WSConnection) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

func marshal(payload interface{}) json.RawMessage {
	if payload == nil {
		return nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		// 载荷都是内部结构体，不会失败
		return nil
	}
	return data
}
