package ws

import "time"

func SetWriteWait(h *Hub, d time.Duration) { h.writeWait = d }
