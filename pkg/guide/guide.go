package guide

// Section is one titled block of a guide topic. Content uses **bold** markers and
// "•" bullets.
type Section struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Topic is a guide chapter.
type Topic struct {
	Key      string    `json:"key"`
	Title    string    `json:"title"`
	Sections []Section `json:"sections"`
}

// Topics returns the guide chapters in reading order.
func Topics() []Topic {
	return topics
}

// Find returns the topic with the given key.
func Find(key string) (Topic, bool) {
	for _, t := range topics {
		if t.Key == key {
			return t, true
		}
	}
	return Topic{}, false
}

var topics = []Topic{
	{
		Key:   "basics",
		Title: "Stick Shift Basics",
		Sections: []Section{
			{
				Title: "How Manual Transmission Works",
				Content: `A manual transmission uses a clutch and a gear lever to send engine power to the wheels. You decide when to change gears by pressing the clutch pedal and moving the lever.

The clutch connects and disconnects the engine from the transmission. Pressed, it lets you change gears without grinding. Released, it passes engine power to the wheels.`,
			},
			{
				Title: "The Clutch",
				Content: `The clutch pedal belongs to your left foot. It has three zones:

• **Fully pressed** - engine disconnected from the wheels, safe to shift
• **Engagement point (friction zone)** - where the clutch starts to grab
• **Fully released** - full power transfer

Smooth driving starts with finding the engagement point. Practice on flat ground until you can feel where it bites.`,
			},
			{
				Title: "Starting from a Stop",
				Content: `1. Press the clutch fully and hold the brake
2. Shift into 1st gear
3. Release the brake
4. Slowly let the clutch out to the engagement point
5. As the car starts to move, add gas gradually
6. Keep releasing the clutch smoothly while adding throttle

**Tip:** If the engine bogs, give it more gas. If RPM flares without the car moving, you are letting the clutch out too slowly.`,
			},
			{
				Title: "Upshifting",
				Content: `1. Accelerate in the current gear
2. Lift off the gas
3. Press the clutch fully
4. Move the lever to the next gear
5. Release the clutch
6. Apply gas smoothly

**When to shift up:** around 2,500-3,500 RPM in normal driving. Shift later when driving briskly, but stay below redline.`,
			},
			{
				Title: "Downshifting",
				Content: `1. Lift off the gas
2. Press the clutch
3. Select the lower gear
4. Release the clutch smoothly
5. Apply gas as needed

**When to downshift:** when slowing down, when you need more power for passing or hills, or when RPM drops too low for the current gear.

**Warning:** never downshift into a gear that would put the engine above redline. Use the simulator to check the RPM first.`,
			},
		},
	},
	{
		Key:   "hills",
		Title: "Starting on Hills",
		Sections: []Section{
			{
				Title: "The Handbrake Method",
				Content: `The most reliable technique while learning:

1. Stop on the hill with your foot on the brake
2. Pull the handbrake firmly
3. Keep the clutch pressed and select 1st
4. Find the engagement point
5. Add more gas than on flat ground, 2,000 RPM or more
6. When the car pulls against the handbrake, release it
7. Keep releasing the clutch while holding the gas

The car stays put until there is enough power to move forward.`,
			},
			{
				Title: "The Heel-Toe Hill Start",
				Content: `For more experienced drivers:

1. Heel on the brake, toe over the gas
2. Press the clutch with your left foot
3. Select 1st gear
4. Let the clutch out to the engagement point
5. Roll the toe onto the gas while the heel holds the brake
6. When the engine loads up, release the brake and drive away

Faster than the handbrake method, but it takes coordination and practice.`,
			},
			{
				Title: "Common Hill Start Mistakes",
				Content: `• **Rolling back** - too little gas or a clutch released too slowly
• **Stalling** - clutch released too fast without enough gas
• **Burning the clutch** - slipping it for too long under load

If you start rolling back, brake, hold the clutch in and start over with the handbrake.`,
			},
		},
	},
	{
		Key:   "advanced",
		Title: "Advanced Techniques",
		Sections: []Section{
			{
				Title: "Rev Matching",
				Content: `Rev matching removes the jolt of a downshift by raising engine RPM to what the lower gear needs before the clutch is released.

1. Press the clutch
2. Select the lower gear
3. Blip the throttle to raise RPM
4. Release the clutch once RPM matches the lower gear

**Target RPM:** current RPM × (new gear ratio ÷ current gear ratio). The simulator shows the target for each neighbouring gear.`,
			},
			{
				Title: "Heel-Toe Downshifting",
				Content: `Braking and a rev-matched downshift at the same time, the core of performance driving.

1. Brake with the ball of your right foot
2. Press the clutch
3. Downshift
4. Still braking, roll your right foot to blip the throttle with the heel or the side of the foot
5. Release the clutch smoothly
6. Keep braking as needed

The car stays settled and is in the right gear for the corner exit.`,
			},
			{
				Title: "Double Clutching",
				Content: `A technique from before synchromesh gearboxes. Rarely needed today but worth understanding:

1. Press the clutch and shift to neutral
2. Release the clutch
3. Blip the throttle to match RPM
4. Press the clutch again
5. Select the new gear
6. Release the clutch

**Where it helps:** old vehicles, trucks with non-synchro boxes and worn synchros.`,
			},
		},
	},
	{
		Key:   "tips",
		Title: "Common Mistakes & Tips",
		Sections: []Section{
			{
				Title: "Riding the Clutch",
				Content: `**What it is:** resting your foot on the clutch pedal while driving.

**Why it hurts:** even light pressure loads the release bearing and can make the clutch slip.

**Fix:** touch the clutch only to shift. Rest your left foot on the dead pedal.`,
			},
			{
				Title: "Lugging the Engine",
				Content: `**What it is:** very low RPM in a high gear, with the engine straining.

**Why it hurts:** it stresses the bearings and drivetrain and builds up carbon.

**Fix:** downshift once RPM falls below 1,500-2,000. The car should pull smoothly, not shudder.`,
			},
			{
				Title: "Money Shifting",
				Content: `**What it is:** selecting a much lower gear at high RPM by mistake, over-revving the engine.

**Example:** going from 4th to 2nd instead of 4th to 5th at 6,000 RPM.

**Why it is catastrophic:** valves can hit pistons and rods can bend in an instant.

**Prevention:** shift deliberately, know the pattern, never rush.`,
			},
			{
				Title: "When to Shift - RPM vs Feel",
				Content: `**By RPM:**
• Normal driving: shift up at 2,500-3,500 RPM
• Hard acceleration: shift up at 4,500-6,000 RPM, before redline
• Downshift below 2,000 RPM or when you need power

**By feel:**
• The engine sounds strained - shift up
• The car does not respond to throttle - shift down
• The engine sounds high and buzzy - shift up`,
			},
			{
				Title: "Top Tips for New Manual Drivers",
				Content: `1. **Practice in an empty parking lot** before driving in traffic
2. **Learn on flat ground** before tackling hills
3. **Smooth is fast** - speed comes later
4. **Stalling happens** - restart calmly
5. **Use the handbrake on hills** - there is no shame in it
6. **Listen to the engine** - it tells you what it needs
7. **Leave a safe following distance** - it buys time to react`,
			},
		},
	},
}
