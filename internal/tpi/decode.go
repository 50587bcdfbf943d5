package tpi

import "fmt"

// Data holds the fields extracted from a packet's data section.
type Data struct {
	Value     string `json:"value"`
	Zone      string `json:"zone"`
	Partition int    `json:"partition"`
}

// Payload is one fully decoded packet.
type Payload struct {
	Command  Command  `json:"command"`
	Data     Data     `json:"data"`
	Checksum Checksum `json:"checksum"`
}

// CalculateChecksum sums the byte values of value, truncates to 8 bits, and
// renders the result as two uppercase hex digits.
func CalculateChecksum(value string) Checksum {
	var sum byte
	for i := 0; i < len(value); i++ {
		sum += value[i]
	}
	return Checksum(fmt.Sprintf("%02X", sum))
}

// Validate reports whether packet is long enough and ends in the checksum
// of everything before it.
func Validate(packet string) bool {
	if len(packet) < MinPacketLength {
		return false
	}
	body := packet[:len(packet)-ChecksumLength]
	return ParseChecksum(packet) == CalculateChecksum(body)
}

// GetPayload validates packet and decodes it.
func GetPayload(packet string) (Payload, error) {
	if !Validate(packet) {
		return Payload{}, fmt.Errorf("%w: %q", ErrMalformedPacket, packet)
	}
	return Payload{
		Command:  ParseCommand(packet),
		Data:     ParseData(packet),
		Checksum: ParseChecksum(packet),
	}, nil
}

// ParseCommand returns the leading command, or "" when packet is shorter
// than MinPacketLength.
func ParseCommand(packet string) Command {
	if len(packet) < MinPacketLength {
		return ""
	}
	return Command(packet[:CommandLength])
}

// ParseChecksum returns the trailing checksum, or "" when packet is shorter
// than MinPacketLength.
func ParseChecksum(packet string) Checksum {
	if len(packet) < MinPacketLength {
		return ""
	}
	return Checksum(packet[len(packet)-ChecksumLength:])
}

// ParseData extracts the data section and peels off the partition digit
// and/or zone according to the command's class.
func ParseData(packet string) Data {
	if len(packet) <= MinPacketLength {
		return Data{}
	}

	cmd := ParseCommand(packet)
	value := packet[CommandLength : len(packet)-ChecksumLength]

	var data Data
	switch Classify(cmd) {
	case ClassPartition:
		data.Partition = ParsePartition(value)
		value = dropPrefix(value, 1)
	case ClassZone:
		data.Zone = ParseZone(value)
		value = dropPrefix(value, 3)
	case ClassPartitionZone:
		data.Partition = ParsePartition(value)
		data.Zone = ParseZone(dropPrefix(value, 1))
		value = dropPrefix(value, 4)
	}
	data.Value = value
	return data
}

// ParsePartition reads the first character as a single digit. Anything
// else yields 0, which means no partition.
func ParsePartition(value string) int {
	if len(value) == 0 {
		return 0
	}
	c := value[0]
	if c < '0' || c > '9' {
		return 0
	}
	return int(c - '0')
}

// ParseZone returns the first three characters, or "" when fewer exist.
func ParseZone(value string) string {
	if len(value) < 3 {
		return ""
	}
	return value[:3]
}

func dropPrefix(s string, n int) string {
	if len(s) <= n {
		return ""
	}
	return s[n:]
}
