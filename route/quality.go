package route

import (
	"math"

	"hydroroute/types"
)

// routeQuality 水质与水温演算
//
//	节点按完全混合计算,连接取上游节点浓度在本步内混合,一阶衰减损失计入反应量。
//	节点使用上一步的连接浓度,连接使用本步更新后的节点浓度。
func (r *Router) routeQuality(dt float64) {
	if dt <= 0 {
		return
	}
	np := r.Net.NumPollutants()
	temp := r.Net.Temperature.Active
	if np == 0 && !temp {
		return
	}
	mass := make([]float64, np)
	for i, n := range r.Net.Nodes {
		volIn := r.lat.flow[i]
		copy(mass, r.lat.flux[i])
		heat := r.lat.heat[i]
		for _, k := range r.Graph.Incident(i) {
			l := r.Net.Links[k]
			q := 0.0
			switch {
			case l.Node2 == i && l.Flow > 0:
				q = l.Flow
			case l.Node1 == i && l.Flow < 0:
				q = -l.Flow
			}
			if q <= 0 {
				continue
			}
			volIn += q
			for p := range mass {
				mass[p] += q * l.Qual[p]
			}
			heat += q * l.Temp
		}
		vOld := n.OldVolume
		if n.Type == types.Outfall {
			vOld = 0
		}
		for p := range mass {
			c := mix(n.OldQual[p], vOld, mass[p], volIn, dt, n.EvapLoss)
			n.Qual[p] = r.decay(p, c, n.Volume, n.Type != types.Outfall, dt)
		}
		if temp {
			n.Temp = mix(n.OldTemp, vOld, heat, volIn, dt, 0)
		}
	}
	for _, l := range r.Net.Links {
		up := r.Net.Nodes[l.Node1]
		if l.Flow < 0 {
			up = r.Net.Nodes[l.Node2]
		}
		q := math.Abs(l.Flow)
		for p := range l.Qual {
			c := mix(l.Qual[p], l.OldVolume, q*up.Qual[p], q, dt, 0)
			l.Qual[p] = r.decay(p, c, l.Volume, true, dt)
		}
		if temp {
			l.Temp = mix(l.Temp, l.OldVolume, q*up.Temp, q, dt, 0)
		}
	}
}

// mix 完全混合浓度
//
//	c = (cOld·vOld + flux·dt) / (vOld + (qIn - evap)·dt)
func mix(cOld, vOld, flux, qIn, dt, evap float64) float64 {
	v := vOld + (qIn-evap)*dt
	if v > types.Epsilon {
		return math.Max((cOld*vOld+flux*dt)/v, 0)
	}
	if qIn > 0 {
		return flux / qIn
	}
	return 0
}

// decay 一阶衰减,衰减掉的负荷计入反应量
func (r *Router) decay(p int, c, vol float64, stored bool, dt float64) float64 {
	k := r.Net.Pollutants[p].Decay / types.SecPerDay
	if k <= 0 || !stored || vol <= 0 || c <= 0 {
		return c
	}
	f := math.Exp(-k * dt)
	r.budget.AddReacted(p, c*(1-f)*vol)
	return c * f
}
