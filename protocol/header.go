package protocol

import (
	"fmt"

	s2proto "github.com/synadia-labs/s2proto-go/runtime"
)

// Signature is the expected value of SHeader.Signature.
const Signature = "StarCraft II replay\x1b11"

// SVersion is the game version that recorded a replay.
type SVersion struct {
	Flags     uint8
	Major     uint8
	Minor     uint8
	Revision  uint8
	Build     uint32
	BaseBuild uint32
}

func (z SVersion) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", z.Major, z.Minor, z.Revision, z.Build)
}

func (z *SVersion) DecodeVersioned(b []byte) ([]byte, error) {
	return s2proto.ReadStructBytes(b, []s2proto.StructField{
		{Name: "m_flags", Tag: 0, Decode: func(b []byte) (o []byte, err error) {
			z.Flags, o, err = s2proto.ReadTaggedUint8Bytes(b)
			return
		}},
		{Name: "m_major", Tag: 1, Decode: func(b []byte) (o []byte, err error) {
			z.Major, o, err = s2proto.ReadTaggedUint8Bytes(b)
			return
		}},
		{Name: "m_minor", Tag: 2, Decode: func(b []byte) (o []byte, err error) {
			z.Minor, o, err = s2proto.ReadTaggedUint8Bytes(b)
			return
		}},
		{Name: "m_revision", Tag: 3, Decode: func(b []byte) (o []byte, err error) {
			z.Revision, o, err = s2proto.ReadTaggedUint8Bytes(b)
			return
		}},
		{Name: "m_build", Tag: 4, Decode: func(b []byte) (o []byte, err error) {
			z.Build, o, err = s2proto.ReadTaggedUint32Bytes(b)
			return
		}},
		{Name: "m_baseBuild", Tag: 5, Decode: func(b []byte) (o []byte, err error) {
			z.BaseBuild, o, err = s2proto.ReadTaggedUint32Bytes(b)
			return
		}},
	})
}

func (z *SVersion) DecodePacked(c s2proto.BitCursor) (s2proto.BitCursor, error) {
	u8 := func(dst *uint8) func(s2proto.BitCursor) (s2proto.BitCursor, error) {
		return func(c s2proto.BitCursor) (o s2proto.BitCursor, err error) {
			*dst, o, err = s2proto.ReadPackedUint8(c, 0, 8)
			return
		}
	}
	u32 := func(dst *uint32) func(s2proto.BitCursor) (s2proto.BitCursor, error) {
		return func(c s2proto.BitCursor) (o s2proto.BitCursor, err error) {
			*dst, o, err = s2proto.ReadPackedUint32(c, 0, 32)
			return
		}
	}
	return s2proto.ReadPackedStruct(c, []s2proto.PackedField{
		{Name: "m_flags", Decode: u8(&z.Flags)},
		{Name: "m_major", Decode: u8(&z.Major)},
		{Name: "m_minor", Decode: u8(&z.Minor)},
		{Name: "m_revision", Decode: u8(&z.Revision)},
		{Name: "m_build", Decode: u32(&z.Build)},
		{Name: "m_baseBuild", Decode: u32(&z.BaseBuild)},
	})
}

// SHeader is the replay header stored in the MPQ user data. It is always
// byte-aligned and its layout is stable across builds, which is what lets
// a reader find the base build before it knows which protocol to use.
// Fields added by later builds are optional.
type SHeader struct {
	Signature               []byte
	Version                 SVersion
	Type                    uint8
	ElapsedGameLoops        uint32
	UseScaledTime           bool
	NGDPRootKey             *Smd5
	DataBuildNum            uint32
	ReplayCompatibilityHash *Smd5
	NGDPRootKeyIsDevData    bool
}

func (z *SHeader) DecodeVersioned(b []byte) ([]byte, error) {
	*z = SHeader{}
	return s2proto.ReadStructBytes(b, []s2proto.StructField{
		{Name: "m_signature", Tag: 0, Decode: func(b []byte) (o []byte, err error) {
			z.Signature, o, err = s2proto.ReadBlobBytes(b)
			return
		}},
		{Name: "m_version", Tag: 1, Decode: z.Version.DecodeVersioned},
		{Name: "m_type", Tag: 2, Decode: func(b []byte) (o []byte, err error) {
			z.Type, o, err = s2proto.ReadTaggedUint8Bytes(b)
			return
		}},
		{Name: "m_elapsedGameLoops", Tag: 3, Decode: func(b []byte) (o []byte, err error) {
			z.ElapsedGameLoops, o, err = s2proto.ReadTaggedUint32Bytes(b)
			return
		}},
		{Name: "m_useScaledTime", Tag: 4, Optional: true, Decode: func(b []byte) (o []byte, err error) {
			z.UseScaledTime, o, err = s2proto.ReadBoolBytes(b)
			return
		}},
		{Name: "m_ngdpRootKey", Tag: 5, Optional: true, Decode: func(b []byte) ([]byte, error) {
			z.NGDPRootKey = new(Smd5)
			return z.NGDPRootKey.DecodeVersioned(b)
		}},
		{Name: "m_dataBuildNum", Tag: 6, Optional: true, Decode: func(b []byte) (o []byte, err error) {
			z.DataBuildNum, o, err = s2proto.ReadTaggedUint32Bytes(b)
			return
		}},
		{Name: "m_replayCompatibilityHash", Tag: 7, Optional: true, Decode: func(b []byte) ([]byte, error) {
			z.ReplayCompatibilityHash = new(Smd5)
			return z.ReplayCompatibilityHash.DecodeVersioned(b)
		}},
		{Name: "m_ngdpRootKeyIsDevData", Tag: 8, Optional: true, Decode: func(b []byte) (o []byte, err error) {
			z.NGDPRootKeyIsDevData, o, err = s2proto.ReadBoolBytes(b)
			return
		}},
	})
}

// ValidSignature reports whether the header carries the replay signature.
func (z *SHeader) ValidSignature() bool { return string(z.Signature) == Signature }

// DecodeHeader decodes the header from MPQ user data. Trailing bytes are
// ignored.
func DecodeHeader(userData []byte) (*SHeader, error) {
	h := new(SHeader)
	if _, err := h.DecodeVersioned(userData); err != nil {
		return nil, s2proto.WrapError(err, "header")
	}
	return h, nil
}
