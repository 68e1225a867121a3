// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package blkid

import "fmt"

// OSType is the partition type byte of an MBR (dos) partition entry.
type OSType uint8

// Known partition type codes.
const (
	OSTypeEmptyPartition      OSType = 0x00
	OSTypeFAT12               OSType = 0x01
	OSTypeXenixRoot           OSType = 0x02
	OSTypeXenixUser           OSType = 0x03
	OSTypeFAT16               OSType = 0x04
	OSTypeExtendedPartition   OSType = 0x05
	OSTypeFAT16B              OSType = 0x06
	OSTypeHPFSNTFSExfat       OSType = 0x07
	OSTypeAIX                 OSType = 0x08
	OSTypeAIXBootable         OSType = 0x09
	OSTypeOS2BootManager      OSType = 0x0a
	OSTypeW95FAT32            OSType = 0x0b
	OSTypeW95FAT32LBA         OSType = 0x0c
	OSTypeW95FAT16LBA         OSType = 0x0e
	OSTypeW95ExtendedLBA      OSType = 0x0f
	OSTypeOPUS                OSType = 0x10
	OSTypeHiddenFAT12         OSType = 0x11
	OSTypeCompaqDiagnostics   OSType = 0x12
	OSTypeHiddenFAT16         OSType = 0x14
	OSTypeHiddenFAT16B        OSType = 0x16
	OSTypeHiddenHPFSNTFSExFat OSType = 0x17
	OSTypeASTSmartSleep       OSType = 0x18
	OSTypeHiddenW95FAT32      OSType = 0x1b
	OSTypeHiddenW95FAT32LBA   OSType = 0x1c
	OSTypeHiddenW95FAT16LBA   OSType = 0x1e
	OSTypeNecDOS              OSType = 0x24
	OSTypeHiddenNTFSRescue    OSType = 0x27
	OSTypePlan9               OSType = 0x39
	OSTypePartitionMagic      OSType = 0x3c
	OSTypeVenix80286          OSType = 0x40
	OSTypePPCPrepBoot         OSType = 0x41
	OSTypeSfs                 OSType = 0x42
	OSTypeQNX4Primary         OSType = 0x4d
	OSTypeQNX4Secondary       OSType = 0x4e
	OSTypeQNX4Tertiary        OSType = 0x4f
	OSTypeOnTrackDM           OSType = 0x50
	OSTypeOnTrackDM6Aux1      OSType = 0x51
	OSTypeCPM80               OSType = 0x52
	OSTypeOnTrackDM6Aux3      OSType = 0x53
	OSTypeOnTrackDM6Ddo       OSType = 0x54
	OSTypeEZDrive             OSType = 0x55
	OSTypeGoldenBow           OSType = 0x56
	OSTypePriamEDisk          OSType = 0x5c
	OSTypeSpeedStor           OSType = 0x61
	OSTypeGNUHurdSystemV      OSType = 0x63
	OSTypeNovellNetware286    OSType = 0x64
	OSTypeNovellNetware386    OSType = 0x65
	OSTypeDiskSecureMultiBoot OSType = 0x70
	OSTypePCIX                OSType = 0x75
	OSTypeOldMinix            OSType = 0x80
	OSTypeMinixOldLinux       OSType = 0x81
	OSTypeLinuxSwap           OSType = 0x82
	OSTypeLinux               OSType = 0x83
	OSTypeOS2HiddenCDrive     OSType = 0x84
	OSTypeLinuxExtended       OSType = 0x85
	OSTypeFAT16VolumeSet      OSType = 0x86
	OSTypeNTFSVolumeSet       OSType = 0x87
	OSTypeLinuxPlaintext      OSType = 0x88
	OSTypeLinuxLVM            OSType = 0x8e
	OSTypeAmoeba              OSType = 0x93
	OSTypeAmoebaBadBlockTable OSType = 0x94
	OSTypeBSDOs               OSType = 0x9f
	OSTypeIBMThinkpad         OSType = 0xa0
	OSTypeFreeBSD             OSType = 0xa5
	OSTypeOpenBSD             OSType = 0xa6
	OSTypeNextStep            OSType = 0xa7
	OSTypeDarwinUFS           OSType = 0xa8
	OSTypeNetBSD              OSType = 0xa9
	OSTypeDarwinBoot          OSType = 0xab
	OSTypeHFSHFSPlus          OSType = 0xaf
	OSTypeBSDIFs              OSType = 0xb7
	OSTypeBSDISwap            OSType = 0xb8
	OSTypeBootWizardHidden    OSType = 0xbb
	OSTypeAcronisFAT32LBA     OSType = 0xbc
	OSTypeSolarisBoot         OSType = 0xbe
	OSTypeSolaris             OSType = 0xbf
	OSTypeDRDOSSecuredFAT12   OSType = 0xc1
	OSTypeDRDOSSecuredFAT16   OSType = 0xc4
	OSTypeDRDOSSecuredFAT16B  OSType = 0xc6
	OSTypeSyrinx              OSType = 0xc7
	OSTypeNonFsData           OSType = 0xda
	OSTypeCPMCtOs             OSType = 0xdb
	OSTypeDellUtilityFAT16    OSType = 0xde
	OSTypeBootIt              OSType = 0xdf
	OSTypeDOSAccess           OSType = 0xe1
	OSTypeDOSRO               OSType = 0xe3
	OSTypeSpeedStorFAT16      OSType = 0xe4
	OSTypeFreedesktopBoot     OSType = 0xea
	OSTypeBeOSBFS             OSType = 0xeb
	OSTypeGPTProtectiveMBR    OSType = 0xee
	OSTypeEfiSystem           OSType = 0xef
	OSTypePARISCLinux         OSType = 0xf0
	OSTypeSDSpeedstor         OSType = 0xf1
	OSTypeSpeedStorFAT16B     OSType = 0xf4
	OSTypeDOSSecondary        OSType = 0xf2
	OSTypeEBBRProtective      OSType = 0xf8
	OSTypeVMWareVMFS          OSType = 0xfb
	OSTypeVMWareVMKCORE       OSType = 0xfc
	OSTypeLinuxRaidAuto       OSType = 0xfd
	OSTypeLanStep             OSType = 0xfe
	OSTypeXenixBadBlockTable  OSType = 0xff
)

var osTypeNames = map[OSType]string{
	OSTypeEmptyPartition:      "Empty",
	OSTypeFAT12:               "FAT12",
	OSTypeXenixRoot:           "XENIX root",
	OSTypeXenixUser:           "XENIX usr",
	OSTypeFAT16:               "FAT16 <32M",
	OSTypeExtendedPartition:   "Extended",
	OSTypeFAT16B:              "FAT16",
	OSTypeHPFSNTFSExfat:       "HPFS/NTFS/exFAT",
	OSTypeAIX:                 "AIX",
	OSTypeAIXBootable:         "AIX bootable",
	OSTypeOS2BootManager:      "OS/2 Boot Manager",
	OSTypeW95FAT32:            "W95 FAT32",
	OSTypeW95FAT32LBA:         "W95 FAT32 (LBA)",
	OSTypeW95FAT16LBA:         "W95 FAT16 (LBA)",
	OSTypeW95ExtendedLBA:      "W95 Ext'd (LBA)",
	OSTypeOPUS:                "OPUS",
	OSTypeHiddenFAT12:         "Hidden FAT12",
	OSTypeCompaqDiagnostics:   "Compaq diagnostics",
	OSTypeHiddenFAT16:         "Hidden FAT16 <32M",
	OSTypeHiddenFAT16B:        "Hidden FAT16",
	OSTypeHiddenHPFSNTFSExFat: "Hidden HPFS/NTFS",
	OSTypeASTSmartSleep:       "AST SmartSleep",
	OSTypeHiddenW95FAT32:      "Hidden W95 FAT32",
	OSTypeHiddenW95FAT32LBA:   "Hidden W95 FAT32 (LBA)",
	OSTypeHiddenW95FAT16LBA:   "Hidden W95 FAT16 (LBA)",
	OSTypeNecDOS:              "NEC DOS",
	OSTypeHiddenNTFSRescue:    "Hidden NTFS WinRE",
	OSTypePlan9:               "Plan 9",
	OSTypePartitionMagic:      "PartitionMagic recovery",
	OSTypeVenix80286:          "Venix 80286",
	OSTypePPCPrepBoot:         "PPC PReP Boot",
	OSTypeSfs:                 "SFS",
	OSTypeQNX4Primary:         "QNX4.x",
	OSTypeQNX4Secondary:       "QNX4.x 2nd part",
	OSTypeQNX4Tertiary:        "QNX4.x 3rd part",
	OSTypeOnTrackDM:           "OnTrack DM",
	OSTypeOnTrackDM6Aux1:      "OnTrack DM6 Aux1",
	OSTypeCPM80:               "CP/M",
	OSTypeOnTrackDM6Aux3:      "OnTrack DM6 Aux3",
	OSTypeOnTrackDM6Ddo:       "OnTrackDM6",
	OSTypeEZDrive:             "EZ-Drive",
	OSTypeGoldenBow:           "Golden Bow",
	OSTypePriamEDisk:          "Priam Edisk",
	OSTypeSpeedStor:           "SpeedStor",
	OSTypeGNUHurdSystemV:      "GNU HURD or SysV",
	OSTypeNovellNetware286:    "Novell Netware 286",
	OSTypeNovellNetware386:    "Novell Netware 386",
	OSTypeDiskSecureMultiBoot: "DiskSecure Multi-Boot",
	OSTypePCIX:                "PC/IX",
	OSTypeOldMinix:            "Old Minix",
	OSTypeMinixOldLinux:       "Minix / old Linux",
	OSTypeLinuxSwap:           "Linux swap / Solaris",
	OSTypeLinux:               "Linux",
	OSTypeOS2HiddenCDrive:     "OS/2 hidden or Intel hibernation",
	OSTypeLinuxExtended:       "Linux extended",
	OSTypeFAT16VolumeSet:      "NTFS volume set",
	OSTypeNTFSVolumeSet:       "NTFS volume set",
	OSTypeLinuxPlaintext:      "Linux plaintext",
	OSTypeLinuxLVM:            "Linux LVM",
	OSTypeAmoeba:              "Amoeba",
	OSTypeAmoebaBadBlockTable: "Amoeba BBT",
	OSTypeBSDOs:               "BSD/OS",
	OSTypeIBMThinkpad:         "IBM Thinkpad hibernation",
	OSTypeFreeBSD:             "FreeBSD",
	OSTypeOpenBSD:             "OpenBSD",
	OSTypeNextStep:            "NeXTSTEP",
	OSTypeDarwinUFS:           "Darwin UFS",
	OSTypeNetBSD:              "NetBSD",
	OSTypeDarwinBoot:          "Darwin boot",
	OSTypeHFSHFSPlus:          "HFS / HFS+",
	OSTypeBSDIFs:              "BSDI fs",
	OSTypeBSDISwap:            "BSDI swap",
	OSTypeBootWizardHidden:    "Boot Wizard hidden",
	OSTypeAcronisFAT32LBA:     "Acronis FAT32 LBA",
	OSTypeSolarisBoot:         "Solaris boot",
	OSTypeSolaris:             "Solaris",
	OSTypeDRDOSSecuredFAT12:   "DRDOS/sec (FAT-12)",
	OSTypeDRDOSSecuredFAT16:   "DRDOS/sec (FAT-16 < 32M)",
	OSTypeDRDOSSecuredFAT16B:  "DRDOS/sec (FAT-16)",
	OSTypeSyrinx:              "Syrinx",
	OSTypeNonFsData:           "Non-FS data",
	OSTypeCPMCtOs:             "CP/M / CTOS / ...",
	OSTypeDellUtilityFAT16:    "Dell Utility",
	OSTypeBootIt:              "BootIt",
	OSTypeDOSAccess:           "DOS access",
	OSTypeDOSRO:               "DOS R/O",
	OSTypeSpeedStorFAT16:      "SpeedStor",
	OSTypeFreedesktopBoot:     "Linux extended boot",
	OSTypeBeOSBFS:             "BeOS fs",
	OSTypeGPTProtectiveMBR:    "GPT",
	OSTypeEfiSystem:           "EFI (FAT-12/16/32)",
	OSTypePARISCLinux:         "Linux/PA-RISC boot",
	OSTypeSDSpeedstor:         "SpeedStor",
	OSTypeSpeedStorFAT16B:     "SpeedStor",
	OSTypeDOSSecondary:        "DOS secondary",
	OSTypeEBBRProtective:      "EBBR protective",
	OSTypeVMWareVMFS:          "VMware VMFS",
	OSTypeVMWareVMKCORE:       "VMware VMKCORE",
	OSTypeLinuxRaidAuto:       "Linux raid autodetect",
	OSTypeLanStep:             "LANstep",
	OSTypeXenixBadBlockTable:  "BBT",
}

// String returns the 0x-prefixed hexadecimal code.
func (t OSType) String() string {
	return fmt.Sprintf("0x%02x", uint8(t))
}

// Description returns a short human-readable name for the code.
func (t OSType) Description() string {
	if name, ok := osTypeNames[t]; ok {
		return name
	}

	return "unknown"
}

// Known returns true if t is a registered partition type code.
func (t OSType) Known() bool {
	_, ok := osTypeNames[t]

	return ok
}

// ParseOSType parses a 0x-prefixed single-byte hexadecimal code, e.g. "0x83".
func ParseOSType(s string) (OSType, error) {
	v, err := parseHex("OSType", s, 8)
	if err != nil {
		return 0, err
	}

	t := OSType(v)
	if !t.Known() {
		return 0, parserError("OSType", "unsupported OS type: %s", s)
	}

	return t, nil
}
