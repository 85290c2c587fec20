package constants

import "os"

func GetStorageDir() string {
	path := os.Getenv("STORAGE_PATH")
	if path != "" {
		return path
	}
	return "./RobotUserFiles"
}

func GetConfigPath() string {
	path := os.Getenv("FINGERBOT_CONFIG")
	if path != "" {
		return path
	}
	return "config.yaml"
}

// Characteristic write markers for the file transfer protocol.
const (
	FilenamePrefix = "FILENAME:"
	EOFMarker      = "EOF"
)

// Files with this extension are in-progress artifacts and never listed.
const TempFileExt = ".tmp"

const ListTimeLayout = "2006-01-02 15:04:05"

// Command type understood by the motor boards for a fingering change.
const FingeringCommand = 3

const DefaultClientID = "default"

// GATT services and characteristics.
const (
	FileTransferServiceUUID = "0000180e-0000-1000-8000-00805f9b34fb"
	FileWriteCharUUID       = "00002a3b-0000-1000-8000-00805f9b34fb"

	PlayAudioServiceUUID = "0000180f-0000-1000-8000-00805f9b34fb"
	ListFilesCharUUID    = "00002a3c-0000-1000-8000-00805f9b34fb"
	PlayAudioCharUUID    = "00002a3d-0000-1000-8000-00805f9b34fb"
	DeleteFileCharUUID   = "00002a3e-0000-1000-8000-00805f9b34fb"
	PauseAudioCharUUID   = "00002a3f-0000-1000-8000-00805f9b34fb"
	ResumeAudioCharUUID  = "00002a40-0000-1000-8000-00805f9b34fb"
)
