package index

import "encoding/binary"

// key = position(8) + 0x00 + slug
// 位置来自排序结果，cursor 顺序即列表顺序
func makePositionKey(pos int, slug string) []byte {
	buf := make([]byte, 8, 8+1+len(slug))
	binary.BigEndian.PutUint64(buf, uint64(pos))
	buf = append(buf, 0x00)
	buf = append(buf, slug...)
	return buf
}

func slugFromPositionKey(k []byte) string {
	if len(k) < 8+2 || k[8] != 0x00 {
		return ""
	}
	return string(k[9:])
}

func encodeCount(n int) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(n))
	return b
}

func decodeCount(b []byte) int {
	if len(b) != 8 {
		return 0
	}
	return int(binary.BigEndian.Uint64(b))
}
