package network

// 客户端动作
const (
	MsgCreateRoom   = "createRoom"
	MsgJoinRoom     = "joinRoom"
	MsgRequestSpin  = "requestSpin"
	MsgTakeShot     = "takeShot"
	MsgTriggerEvent = "triggerEvent"
	MsgSendEmoji    = "sendEmoji"
)

// 服务端房间广播
const (
	MsgPlayerJoined      = "playerJoined"
	MsgUpdateLeaderboard = "updateLeaderboard"
	MsgSpinStarted       = "spinStarted"
	MsgSpinResult        = "spinResult"
	MsgPlayerShot        = "playerShot"
	MsgCosmicEvent       = "cosmicEvent"
	MsgReceiveEmoji      = "receiveEmoji"
	MsgPlayerLeft        = "playerLeft"
)

// 应答信封类型
const MsgAck = "ack"
