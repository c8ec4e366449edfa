package rle

const (
	maxLiteralRun = 128 // 制御バイト 0x80 に対応
	maxRepeatRun  = 127 // 制御バイト 0x7F に対応
	minRepeatRun  = 4   // これ未満の連続はリテラルとして出力した方が短い
)

// Encode はデータをカスタムRLE方式で圧縮します。
// 4バイト以上の同一バイトの連続はリピートランとして、それ以外は
// 最大128バイトずつのリテラルランとして出力します。
// どんな入力に対しても Decode(Encode(src)) == src が成り立ちます。
func Encode(src []byte) []byte {
	dst := make([]byte, 0, len(src)+len(src)/maxLiteralRun+1)

	litStart := 0 // 未出力のリテラル領域の先頭
	flush := func(end int) {
		for litStart < end {
			n := end - litStart
			if n > maxLiteralRun {
				n = maxLiteralRun
			}
			dst = append(dst, byte(0x100-n))
			dst = append(dst, src[litStart:litStart+n]...)
			litStart += n
		}
	}

	for cur := 0; cur < len(src); {
		run := 1
		for cur+run < len(src) && src[cur+run] == src[cur] && run < maxRepeatRun {
			run++
		}
		if run >= minRepeatRun {
			flush(cur)
			dst = append(dst, byte(run), src[cur])
			cur += run
			litStart = cur
			continue
		}
		cur += run
	}
	flush(len(src))

	return dst
}
