// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package blkid

import "sync"

// FileSystem identifies a superblock type by its libblkid name.
type FileSystem int

// Known file systems.
const (
	FileSystemAdaptecRaid FileSystem = iota
	FileSystemAPFS
	FileSystemBcache
	FileSystemBcacheFs
	FileSystemBeFS
	FileSystemBFS
	FileSystemBitLocker
	FileSystemBlueStore
	FileSystemBtrfs
	FileSystemCramfs
	FileSystemDDFRaid
	FileSystemDmIntegrity
	FileSystemDmSnapshot
	FileSystemDmVerify
	FileSystemDRBD
	FileSystemDRBDManage
	FileSystemDRBDProxyDatalog
	FileSystemEROFS
	FileSystemExFAT
	FileSystemExfs
	FileSystemExt2
	FileSystemExt3
	FileSystemExt4
	FileSystemExt4Dev
	FileSystemF2FS
	FileSystemFileVault
	FileSystemGFS
	FileSystemGFS2
	FileSystemHFS
	FileSystemHFSPlus
	FileSystemHighPoint37x
	FileSystemHighPoint45x
	FileSystemHPFS
	FileSystemIso9660
	FileSystemISWRaid
	FileSystemJBD
	FileSystemJFS
	FileSystemJmicronRaid
	FileSystemLinuxRaid
	FileSystemLSIRaid
	FileSystemLUKS
	FileSystemLVM1
	FileSystemLVM2
	FileSystemMinix
	FileSystemMpool
	FileSystemMSDOS
	FileSystemNetware
	FileSystemNilfs2
	FileSystemNTFS
	FileSystemNvidiaRaid
	FileSystemOCFS
	FileSystemOCFS2
	FileSystemPromiseRaid
	FileSystemReFs
	FileSystemReiserfs
	FileSystemReiser4
	FileSystemRomfs
	FileSystemSiliconRaid
	FileSystemSquashfs
	FileSystemSquashfs3
	FileSystemStratis
	FileSystemSwap
	FileSystemSwapSuspend
	FileSystemSysV
	FileSystemUBI
	FileSystemUBIFS
	FileSystemUDF
	FileSystemUFS
	FileSystemVDO
	FileSystemVFAT
	FileSystemVIARaid
	FileSystemVMFS
	FileSystemVMFSVolume
	FileSystemVxfs
	FileSystemXenix
	FileSystemXFS
	FileSystemXFSLog
	FileSystemZFS
	FileSystemZoneFS

	fileSystemCount
)

var fileSystemNames = [fileSystemCount]string{
	FileSystemAdaptecRaid:      "adaptec_raid_member",
	FileSystemAPFS:             "apfs",
	FileSystemBcache:           "bcache",
	FileSystemBcacheFs:         "bcachefs",
	FileSystemBeFS:             "befs",
	FileSystemBFS:              "bfs",
	FileSystemBitLocker:        "BitLocker",
	FileSystemBlueStore:        "ceph_bluestore",
	FileSystemBtrfs:            "btrfs",
	FileSystemCramfs:           "cramfs",
	FileSystemDDFRaid:          "ddf_raid_member",
	FileSystemDmIntegrity:      "DM_integrity",
	FileSystemDmSnapshot:       "DM_snapshot_cow",
	FileSystemDmVerify:         "DM_verify_hash",
	FileSystemDRBD:             "drbd",
	FileSystemDRBDManage:       "drbdmanage_control_volume",
	FileSystemDRBDProxyDatalog: "drbdproxy_datalog",
	FileSystemEROFS:            "erofs",
	FileSystemExFAT:            "exfat",
	FileSystemExfs:             "exfs",
	FileSystemExt2:             "ext2",
	FileSystemExt3:             "ext3",
	FileSystemExt4:             "ext4",
	FileSystemExt4Dev:          "ext4dev",
	FileSystemF2FS:             "f2fs",
	FileSystemFileVault:        "cs_fvault2",
	FileSystemGFS:              "gfs",
	FileSystemGFS2:             "gfs2",
	FileSystemHFS:              "hfs",
	FileSystemHFSPlus:          "hfsplus",
	FileSystemHighPoint37x:     "hpt37x_raid_member",
	FileSystemHighPoint45x:     "hpt45x_raid_member",
	FileSystemHPFS:             "hpfs",
	FileSystemIso9660:          "iso9660",
	FileSystemISWRaid:          "isw_raid_member",
	FileSystemJBD:              "jbd",
	FileSystemJFS:              "jfs",
	FileSystemJmicronRaid:      "jmicron_raid_member",
	FileSystemLinuxRaid:        "linux_raid_member",
	FileSystemLSIRaid:          "lsi_mega_raid_member",
	FileSystemLUKS:             "crypto_LUKS",
	FileSystemLVM1:             "LVM1_member",
	FileSystemLVM2:             "LVM2_member",
	FileSystemMinix:            "minix",
	FileSystemMpool:            "mpool",
	FileSystemMSDOS:            "msdos",
	FileSystemNetware:          "nss",
	FileSystemNilfs2:           "nilfs2",
	FileSystemNTFS:             "ntfs",
	FileSystemNvidiaRaid:       "nvidia_raid_member",
	FileSystemOCFS:             "ocfs",
	FileSystemOCFS2:            "ocfs2",
	FileSystemPromiseRaid:      "promise_fasttrack_raid_member",
	FileSystemReFs:             "ReFs",
	FileSystemReiserfs:         "reiserfs",
	FileSystemReiser4:          "reiser4",
	FileSystemRomfs:            "romfs",
	FileSystemSiliconRaid:      "silicon_medley_raid_member",
	FileSystemSquashfs:         "squashfs",
	FileSystemSquashfs3:        "squashfs3",
	FileSystemStratis:          "stratis",
	FileSystemSwap:             "swap",
	FileSystemSwapSuspend:      "swsuspend",
	FileSystemSysV:             "sysv",
	FileSystemUBI:              "ubi",
	FileSystemUBIFS:            "ubifs",
	FileSystemUDF:              "udf",
	FileSystemUFS:              "ufs",
	FileSystemVDO:              "vdo",
	FileSystemVFAT:             "vfat",
	FileSystemVIARaid:          "via_raid_member",
	FileSystemVMFS:             "VMFS",
	FileSystemVMFSVolume:       "VMFS_volume_member",
	FileSystemVxfs:             "vxfs",
	FileSystemXenix:            "xenix",
	FileSystemXFS:              "xfs",
	FileSystemXFSLog:           "xfs_external_log",
	FileSystemZFS:              "zfs_member",
	FileSystemZoneFS:           "zonefs",
}

var fileSystemLookup = sync.OnceValue(func() map[string]FileSystem {
	m := make(map[string]FileSystem, len(fileSystemNames))

	for i, name := range fileSystemNames {
		m[name] = FileSystem(i)
	}

	return m
})

// String returns the name of the file system as reported in the TYPE tag.
func (fs FileSystem) String() string {
	if fs < 0 || fs >= fileSystemCount {
		return "unknown"
	}

	return fileSystemNames[fs]
}

// ParseFileSystem parses a file system name, e.g. "ext4" or "crypto_LUKS".
func ParseFileSystem(s string) (FileSystem, error) {
	stripped, err := unquote("FileSystem", s)
	if err != nil {
		return 0, err
	}

	if fs, ok := fileSystemLookup()[stripped]; ok {
		return fs, nil
	}

	return 0, parserError("FileSystem", "unsupported file system: %q", s)
}
