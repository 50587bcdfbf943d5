package tpi

import "strconv"

// MakeLoginPacket encodes a network login for password, terminated and
// ready to write to the wire.
func MakeLoginPacket(password string) string {
	return EncodePacket(CommandNetworkLogin, password)
}

// EncodePacket renders cmd and data with their checksum and terminator.
func EncodePacket(cmd Command, data string) string {
	body := string(cmd) + data
	return body + string(CalculateChecksum(body)) + PacketTerminator
}

// DisconnectPayload is the pseudo payload used to tell notifiers that the
// panel connection was lost.
func DisconnectPayload(hadError bool) Payload {
	return Payload{
		Command: CommandSoftwareDisconnect,
		Data:    Data{Value: strconv.FormatBool(hadError)},
	}
}

// DisconnectError reports the hadError flag carried by a disconnect payload.
// ok is false when p is not a software disconnect.
func DisconnectError(p Payload) (hadError bool, ok bool) {
	if p.Command != CommandSoftwareDisconnect {
		return false, false
	}
	hadError, err := strconv.ParseBool(p.Data.Value)
	if err != nil {
		return false, false
	}
	return hadError, true
}
