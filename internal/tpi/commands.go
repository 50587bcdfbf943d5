package tpi

// Command is the 3-character code at the head of every packet.
type Command string

// Checksum is the 2-character uppercase hex trailer of every packet.
type Checksum string

const (
	CommandLength  = 3
	ChecksumLength = 2

	// MinPacketLength is the shortest packet that can carry a command and checksum.
	MinPacketLength = CommandLength + ChecksumLength

	PacketTerminator = "\r\n"
)

const (
	CommandPoll                   Command = "000"
	CommandStatusReport           Command = "001"
	CommandNetworkLogin           Command = "005"
	CommandAcknowledge            Command = "500"
	CommandError                  Command = "501"
	CommandSystemError            Command = "502"
	CommandLogin                  Command = "505"
	CommandKeypadLEDState         Command = "510"
	CommandKeypadLEDFlashState    Command = "511"
	CommandZoneAlarm              Command = "601"
	CommandZoneAlarmRestore       Command = "602"
	CommandZoneTamper             Command = "603"
	CommandZoneTamperRestore      Command = "604"
	CommandZoneFault              Command = "605"
	CommandZoneFaultRestore       Command = "606"
	CommandZoneOpen               Command = "609"
	CommandZoneRestored           Command = "610"
	CommandZoneTimerDump          Command = "615"
	CommandBypassedZonesDump      Command = "616"
	CommandDuressAlarm            Command = "620"
	CommandFKeyAlarm              Command = "621"
	CommandFKeyRestore            Command = "622"
	CommandAKeyAlarm              Command = "623"
	CommandAKeyRestore            Command = "624"
	CommandPKeyAlarm              Command = "625"
	CommandPKeyRestore            Command = "626"
	CommandSmokeAuxAlarm          Command = "631"
	CommandSmokeAuxRestore        Command = "632"
	CommandPartitionReady         Command = "650"
	CommandPartitionNotReady      Command = "651"
	CommandPartitionArmed         Command = "652"
	CommandPartitionForceArmReady Command = "653"
	CommandPartitionInAlarm       Command = "654"
	CommandPartitionDisarmed      Command = "655"
	CommandExitDelay              Command = "656"
	CommandEntryDelay             Command = "657"
	CommandKeypadLockOut          Command = "658"
	CommandPartitionFailedToArm   Command = "659"
	CommandPGMOutputInProgress    Command = "660"
	CommandChimeEnabled           Command = "663"
	CommandChimeDisabled          Command = "664"
	CommandInvalidAccessCode      Command = "670"
	CommandFunctionNotAvailable   Command = "671"
	CommandFailureToArm           Command = "672"
	CommandPartitionBusy          Command = "673"
	CommandSystemArming           Command = "674"
	CommandInstallersMode         Command = "680"
	CommandUserClosing            Command = "700"
	CommandSpecialClosing         Command = "701"
	CommandPartialClosing         Command = "702"
	CommandUserOpening            Command = "750"
	CommandSpecialOpening         Command = "751"
	CommandPanelBatteryTrouble    Command = "800"
	CommandPanelBatteryRestore    Command = "801"
	CommandPanelACTrouble         Command = "802"
	CommandPanelACRestore         Command = "803"
	CommandSystemBellTrouble      Command = "806"
	CommandSystemBellRestore      Command = "807"
	CommandFTCTrouble             Command = "814"
	CommandFTCTroubleRestore      Command = "815"
	CommandBufferNearFull         Command = "816"
	CommandSystemTamper           Command = "829"
	CommandSystemTamperRestore    Command = "830"
	CommandTroubleLEDOn           Command = "840"
	CommandTroubleLEDOff          Command = "841"
	CommandFireTroubleAlarm       Command = "842"
	CommandFireTroubleRestore     Command = "843"
	CommandVerboseTroubleStatus   Command = "849"
	CommandCodeRequired           Command = "900"
	CommandOutputPressed          Command = "912"
	CommandMasterCodeRequired     Command = "921"
	CommandInstallersCodeRequired Command = "922"

	// Software commands never appear on the wire. They are synthesized
	// locally and routed through the same notification path.
	CommandSoftwareDisconnect Command = "S00"
	CommandSoftwareZoneAlarm  Command = "S01"
)

// Login response sub-codes carried in Data.Value of a CommandLogin packet.
const (
	LoginFailed          = "0"
	LoginSuccess         = "1"
	LoginTimeout         = "2"
	LoginPasswordRequest = "3"
)

// Class is the field layout of a command's data section.
type Class int

const (
	ClassPlain Class = iota
	ClassZone
	ClassPartition
	ClassPartitionZone
)

func (c Class) String() string {
	switch c {
	case ClassZone:
		return "zone"
	case ClassPartition:
		return "partition"
	case ClassPartitionZone:
		return "partition_zone"
	default:
		return "plain"
	}
}

var partitionCommands = map[Command]struct{}{
	CommandPartitionReady:         {},
	CommandPartitionNotReady:      {},
	CommandPartitionArmed:         {},
	CommandPartitionForceArmReady: {},
	CommandPartitionInAlarm:       {},
	CommandPartitionDisarmed:      {},
	CommandExitDelay:              {},
	CommandEntryDelay:             {},
	CommandKeypadLockOut:          {},
	CommandPartitionFailedToArm:   {},
	CommandPGMOutputInProgress:    {},
	CommandChimeEnabled:           {},
	CommandChimeDisabled:          {},
	CommandInvalidAccessCode:      {},
	CommandFunctionNotAvailable:   {},
	CommandFailureToArm:           {},
	CommandPartitionBusy:          {},
	CommandSystemArming:           {},
	CommandUserClosing:            {},
	CommandSpecialClosing:         {},
	CommandPartialClosing:         {},
	CommandUserOpening:            {},
	CommandSpecialOpening:         {},
	CommandTroubleLEDOn:           {},
	CommandTroubleLEDOff:          {},
	CommandOutputPressed:          {},
}

var zoneCommands = map[Command]struct{}{
	CommandZoneFault:        {},
	CommandZoneFaultRestore: {},
	CommandZoneOpen:         {},
	CommandZoneRestored:     {},
}

var partitionZoneCommands = map[Command]struct{}{
	CommandZoneAlarm:         {},
	CommandZoneAlarmRestore:  {},
	CommandZoneTamper:        {},
	CommandZoneTamperRestore: {},
}

// Classify returns the data layout for cmd. Unknown commands are plain.
func Classify(cmd Command) Class {
	if _, ok := partitionCommands[cmd]; ok {
		return ClassPartition
	}
	if _, ok := zoneCommands[cmd]; ok {
		return ClassZone
	}
	if _, ok := partitionZoneCommands[cmd]; ok {
		return ClassPartitionZone
	}
	return ClassPlain
}

func IsPartitionCommand(cmd Command) bool     { return Classify(cmd) == ClassPartition }
func IsZoneCommand(cmd Command) bool          { return Classify(cmd) == ClassZone }
func IsPartitionZoneCommand(cmd Command) bool { return Classify(cmd) == ClassPartitionZone }

var commandNames = map[Command]string{
	CommandPoll:                   "Poll",
	CommandStatusReport:           "Status Report",
	CommandNetworkLogin:           "Network Login",
	CommandAcknowledge:            "Command Acknowledge",
	CommandError:                  "Command Error",
	CommandSystemError:            "System Error",
	CommandLogin:                  "Login Interaction",
	CommandKeypadLEDState:         "Keypad LED State",
	CommandKeypadLEDFlashState:    "Keypad LED Flash State",
	CommandZoneAlarm:              "Zone Alarm",
	CommandZoneAlarmRestore:       "Zone Alarm Restore",
	CommandZoneTamper:             "Zone Tamper",
	CommandZoneTamperRestore:      "Zone Tamper Restore",
	CommandZoneFault:              "Zone Fault",
	CommandZoneFaultRestore:       "Zone Fault Restore",
	CommandZoneOpen:               "Zone Open",
	CommandZoneRestored:           "Zone Restored",
	CommandZoneTimerDump:          "Envisalink Zone Timer Dump",
	CommandBypassedZonesDump:      "Bypassed Zones Bitfield Dump",
	CommandDuressAlarm:            "Duress Alarm",
	CommandFKeyAlarm:              "Fire Key Alarm",
	CommandFKeyRestore:            "Fire Key Restore",
	CommandAKeyAlarm:              "Auxiliary Key Alarm",
	CommandAKeyRestore:            "Auxiliary Key Restore",
	CommandPKeyAlarm:              "Panic Key Alarm",
	CommandPKeyRestore:            "Panic Key Restore",
	CommandSmokeAuxAlarm:          "Smoke/Aux Alarm",
	CommandSmokeAuxRestore:        "Smoke/Aux Restore",
	CommandPartitionReady:         "Partition Ready",
	CommandPartitionNotReady:      "Partition Not Ready",
	CommandPartitionArmed:         "Partition Armed",
	CommandPartitionForceArmReady: "Partition Ready - Force Arming Enabled",
	CommandPartitionInAlarm:       "Partition In Alarm",
	CommandPartitionDisarmed:      "Partition Disarmed",
	CommandExitDelay:              "Exit Delay In Progress",
	CommandEntryDelay:             "Entry Delay In Progress",
	CommandKeypadLockOut:          "Keypad Lock-out",
	CommandPartitionFailedToArm:   "Partition Failed To Arm",
	CommandPGMOutputInProgress:    "PGM Output In Progress",
	CommandChimeEnabled:           "Chime Enabled",
	CommandChimeDisabled:          "Chime Disabled",
	CommandInvalidAccessCode:      "Invalid Access Code",
	CommandFunctionNotAvailable:   "Function Not Available",
	CommandFailureToArm:           "Failure To Arm",
	CommandPartitionBusy:          "Partition Is Busy",
	CommandSystemArming:           "System Arming In Progress",
	CommandInstallersMode:         "System In Installers Mode",
	CommandUserClosing:            "User Closing",
	CommandSpecialClosing:         "Special Closing",
	CommandPartialClosing:         "Partial Closing",
	CommandUserOpening:            "User Opening",
	CommandSpecialOpening:         "Special Opening",
	CommandPanelBatteryTrouble:    "Panel Battery Trouble",
	CommandPanelBatteryRestore:    "Panel Battery Trouble Restore",
	CommandPanelACTrouble:         "Panel AC Trouble",
	CommandPanelACRestore:         "Panel AC Restore",
	CommandSystemBellTrouble:      "System Bell Trouble",
	CommandSystemBellRestore:      "System Bell Trouble Restore",
	CommandFTCTrouble:             "FTC Trouble",
	CommandFTCTroubleRestore:      "FTC Trouble Restore",
	CommandBufferNearFull:         "Buffer Near Full",
	CommandSystemTamper:           "General System Tamper",
	CommandSystemTamperRestore:    "General System Tamper Restore",
	CommandTroubleLEDOn:           "Trouble LED ON",
	CommandTroubleLEDOff:          "Trouble LED OFF",
	CommandFireTroubleAlarm:       "Fire Trouble Alarm",
	CommandFireTroubleRestore:     "Fire Trouble Alarm Restore",
	CommandVerboseTroubleStatus:   "Verbose Trouble Status",
	CommandCodeRequired:           "Code Required",
	CommandOutputPressed:          "Command Output Pressed",
	CommandMasterCodeRequired:     "Master Code Required",
	CommandInstallersCodeRequired: "Installers Code Required",
	CommandSoftwareDisconnect:     "Software Disconnect",
	CommandSoftwareZoneAlarm:      "Software Zone Alarm",
}

// DefaultCommandName returns the built-in human name for cmd.
func DefaultCommandName(cmd Command) (string, bool) {
	name, ok := commandNames[cmd]
	return name, ok
}
